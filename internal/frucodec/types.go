package frucodec

// RawFru is the raw byte image of one FRU EEPROM, as read off (or
// destined for) the bus.
type RawFru []byte

// MaxFruSize is the largest FRU image Encode produces and ValidateImage
// accepts. Decode itself does not check the image size.
const MaxFruSize = 512

// FruFieldMap holds the decoded fields of one FRU image, keyed
// "<AREA>_<FIELD>" (e.g. "BOARD_PRODUCT_NAME"). Values are the raw
// string contents with trailing NUL bytes stripped; a missing key means
// the field list ended (by terminator or truncation) before that field.
type FruFieldMap map[string]string
