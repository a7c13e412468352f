package frucodec

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// areaSpec describes how to walk one area's field section: the preamble
// (fixed-layout bytes before the field list) and the ordered field names
// that follow it. Only CHASSIS, BOARD, and PRODUCT carry fields this
// decoder understands; INTERNAL and MULTIRECORD are acknowledged but not
// walked, matching spec.md's scope.
type areaSpec struct {
	area     area
	preamble func(raw []byte, start int, out FruFieldMap) (int, error)
	fields   []string
}

func chassisPreamble(raw []byte, start int, out FruFieldMap) (int, error) {
	if start >= len(raw) {
		return 0, fmt.Errorf("frucodec: chassis preamble past end of image")
	}
	out["CHASSIS_TYPE"] = fmt.Sprintf("%d", raw[start])
	return 1, nil
}

func boardPreamble(raw []byte, start int, out FruFieldMap) (int, error) {
	if start+4 > len(raw) {
		return 0, fmt.Errorf("frucodec: board preamble past end of image")
	}
	out["BOARD_LANGUAGE_CODE"] = fmt.Sprintf("%d", raw[start])
	minutes := decodeDateBytes(raw[start+1 : start+4])
	out["BOARD_MANUFACTURE_DATE"] = formatManufactureDate(minutes)
	return 4, nil
}

func productPreamble(raw []byte, start int, out FruFieldMap) (int, error) {
	if start >= len(raw) {
		return 0, fmt.Errorf("frucodec: product preamble past end of image")
	}
	out["PRODUCT_LANGUAGE_CODE"] = fmt.Sprintf("%d", raw[start])
	return 1, nil
}

var areaSpecs = []areaSpec{
	{area: areaChassis, preamble: chassisPreamble, fields: chassisFields},
	{area: areaBoard, preamble: boardPreamble, fields: boardFields},
	{area: areaProduct, preamble: productPreamble, fields: productFields},
}

// areaOffsetIndex is the common-header byte position holding the given
// area's offset-in-8-byte-units field.
func areaOffsetIndex(a area) int {
	return 1 + int(a)
}

// Decode parses a FRU image into its field map. It returns an error for
// a malformed common header, an area preamble that runs past the end of
// the image, or a field-list truncation anywhere except exactly after
// the last field's value; that one case is logged and treated as a
// complete decode of that area.
func Decode(raw RawFru) (FruFieldMap, error) {
	if !ValidateHeader(raw) {
		return nil, fmt.Errorf("frucodec: invalid common header")
	}

	out := make(FruFieldMap)
	out["Common_Format_Version"] = fmt.Sprintf("%d", raw[0])

	for _, spec := range areaSpecs {
		offsetUnits := raw[areaOffsetIndex(spec.area)]
		if offsetUnits == 0 {
			continue
		}
		offsetBytes := int(offsetUnits) * 8

		fieldStart, err := spec.preamble(raw, offsetBytes+2, out)
		if err != nil {
			return nil, err
		}

		if err := decodeFieldList(raw, offsetBytes+2+fieldStart, areaNames[spec.area], spec.fields, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// decodeFieldList walks one area's ordered field list starting at iter,
// writing "<areaName>_<field>" keys into out.
func decodeFieldList(raw []byte, iter int, areaName string, fields []string, out FruFieldMap) error {
	for i, name := range fields {
		if iter >= len(raw) {
			return fmt.Errorf("frucodec: %s field list truncated before %s", areaName, name)
		}

		typeLen := raw[iter]
		if typeLen == fieldTerminator {
			return nil
		}

		length := int(typeLen & lengthMask)
		iter++

		if iter+length > len(raw) {
			return fmt.Errorf("frucodec: %s field %s value runs past end of image", areaName, name)
		}

		value := trimTrailingNUL(raw[iter : iter+length])
		out[areaName+"_"+name] = value
		iter += length

		if iter >= len(raw) {
			isLast := i == len(fields)-1
			if !isLast {
				return fmt.Errorf("frucodec: %s field list truncated after %s", areaName, name)
			}
			logrus.WithFields(logrus.Fields{
				"area":  areaName,
				"field": name,
			}).Warn("Fru Length Mismatch")
			return nil
		}
	}
	return nil
}

func trimTrailingNUL(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
