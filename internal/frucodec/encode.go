package frucodec

import "fmt"

// Encode reconstructs a writable FRU image from a field map. It is used
// on the validation path (confirming a field map round-trips), never as
// a general-purpose FRU authoring API: only the CHASSIS, BOARD, and
// PRODUCT areas this codec decodes are written back; INTERNAL and
// MULTIRECORD are always absent. Within an area, fields are written in
// wire order up to the first one missing from the map; fields after
// that gap are not written.
func Encode(fields FruFieldMap) (RawFru, error) {
	var areaBlocks [][]byte
	var offsetUnits [5]byte

	nextOffsetUnit := byte(1) // header occupies unit 0

	for _, spec := range areaSpecs {
		block, present, err := encodeArea(spec, fields)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		offsetUnits[spec.area] = nextOffsetUnit
		nextOffsetUnit += byte(len(block) / 8)
		areaBlocks = append(areaBlocks, block)
	}

	header := make([]byte, HeaderSize)
	header[0] = formatVersion
	for a := areaInternal; a <= areaMultirecord; a++ {
		header[areaOffsetIndex(a)] = offsetUnits[a]
	}
	header[7] = headerChecksum(header)

	raw := make([]byte, 0, HeaderSize+len(areaBlocks)*8)
	raw = append(raw, header...)
	for _, block := range areaBlocks {
		raw = append(raw, block...)
	}

	if len(raw) > MaxFruSize {
		return nil, fmt.Errorf("frucodec: encoded image of %d bytes exceeds max size %d", len(raw), MaxFruSize)
	}
	return RawFru(raw), nil
}

func headerChecksum(h []byte) byte {
	var sum int
	for i := 0; i < 7; i++ {
		sum += int(h[i])
	}
	return byte((256 - sum) & 0xFF)
}

// encodeArea builds one complete area block: format byte, length byte,
// preamble, field list, terminator, zero padding, and the trailing
// checksum. present is false when the
// field map has nothing for this area at all, in which case the area is
// omitted from the image entirely.
func encodeArea(spec areaSpec, fields FruFieldMap) ([]byte, bool, error) {
	preamble, present, err := encodePreamble(spec, fields)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, false, nil
	}

	body := append([]byte{}, preamble...)
	for _, name := range spec.fields {
		key := areaNames[spec.area] + "_" + name
		value, ok := fields[key]
		if !ok {
			break
		}
		if len(value) > lengthMask {
			return nil, false, fmt.Errorf("frucodec: field %s of %d bytes exceeds max field length %d", key, len(value), lengthMask)
		}
		if len(value) == 1 {
			// asciiType|1 would be 0xC1, the field terminator; pad with a
			// NUL, which Decode strips again.
			value += "\x00"
		}
		body = append(body, asciiType|byte(len(value)))
		body = append(body, []byte(value)...)
	}
	body = append(body, fieldTerminator)

	// format byte + length byte + body, padded to a multiple of 8 bytes,
	// with the final byte of the area reserved for its checksum.
	total := 2 + len(body) + 1
	pad := (8 - total%8) % 8
	total += pad

	block := make([]byte, total)
	block[0] = formatVersion
	block[1] = byte(total / 8)
	copy(block[2:], body)

	var sum int
	for _, b := range block[:total-1] {
		sum += int(b)
	}
	block[total-1] = byte((256 - sum) & 0xFF)

	return block, true, nil
}

func encodePreamble(spec areaSpec, fields FruFieldMap) ([]byte, bool, error) {
	switch spec.area {
	case areaChassis:
		v, ok := fields["CHASSIS_TYPE"]
		if !ok {
			return nil, false, nil
		}
		var t byte
		if _, err := fmt.Sscanf(v, "%d", &t); err != nil {
			return nil, false, fmt.Errorf("frucodec: CHASSIS_TYPE %q is not a byte value: %w", v, err)
		}
		return []byte{t}, true, nil

	case areaBoard:
		lc, ok := fields["BOARD_LANGUAGE_CODE"]
		if !ok {
			return nil, false, nil
		}
		var code byte
		if _, err := fmt.Sscanf(lc, "%d", &code); err != nil {
			return nil, false, fmt.Errorf("frucodec: BOARD_LANGUAGE_CODE %q is not a byte value: %w", lc, err)
		}
		date, ok := fields["BOARD_MANUFACTURE_DATE"]
		if !ok {
			return nil, false, fmt.Errorf("frucodec: BOARD area present without BOARD_MANUFACTURE_DATE")
		}
		minutes, err := parseManufactureDate(date)
		if err != nil {
			return nil, false, fmt.Errorf("frucodec: BOARD_MANUFACTURE_DATE %q: %w", date, err)
		}
		dateBytes := encodeDateBytes(minutes)
		return []byte{code, dateBytes[0], dateBytes[1], dateBytes[2]}, true, nil

	case areaProduct:
		v, ok := fields["PRODUCT_LANGUAGE_CODE"]
		if !ok {
			return nil, false, nil
		}
		var code byte
		if _, err := fmt.Sscanf(v, "%d", &code); err != nil {
			return nil, false, fmt.Errorf("frucodec: PRODUCT_LANGUAGE_CODE %q is not a byte value: %w", v, err)
		}
		return []byte{code}, true, nil

	default:
		return nil, false, nil
	}
}

// ValidateImage reports whether b is a well-formed FRU image of at most
// MaxFruSize bytes: a valid common header plus every area it points to
// decoding without truncation error.
func ValidateImage(b []byte) bool {
	if len(b) > MaxFruSize {
		return false
	}
	if _, err := Decode(RawFru(b)); err != nil {
		return false
	}
	return true
}
