package frucodec

// Field lists per area, in wire order. A decoded FruFieldMap only ever
// holds a prefix of one of these lists — the wire format's 0xC1
// terminator drops every field after it, with no partial skip.
var (
	chassisFields = []string{"PART_NUMBER", "SERIAL_NUMBER", "INFO_AM1", "INFO_AM2"}

	boardFields = []string{
		"MANUFACTURER", "PRODUCT_NAME", "SERIAL_NUMBER", "PART_NUMBER",
		"FRU_VERSION_ID", "INFO_AM1", "INFO_AM2",
	}

	productFields = []string{
		"MANUFACTURER", "PRODUCT_NAME", "PART_NUMBER", "VERSION",
		"SERIAL_NUMBER", "ASSET_TAG", "FRU_VERSION_ID", "INFO_AM1", "INFO_AM2",
	}
)

// fieldTerminator marks the end of a field list; any fields after it in
// the wire data are dropped without being decoded.
const fieldTerminator = 0xC1

// lengthMask extracts the byte count from a type/length byte.
const lengthMask = 0x3F

// asciiType is the type/length tag bits this encoder writes for every
// field (ASCII+Latin1, per the IPMI FRU type/length encoding).
const asciiType = 0xC0
