package frucodec

import "time"

// intelEpoch is the zero point for FRU board manufacture dates: minutes
// are counted from 1996-01-01 00:00 UTC.
var intelEpoch = time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)

// asctimeLayout matches C's asctime() output, minus the trailing newline.
const asctimeLayout = "Mon Jan _2 15:04:05 2006"

// formatManufactureDate converts a little-endian 3-byte minute count into
// an asctime-style string.
func formatManufactureDate(minutes uint32) string {
	t := intelEpoch.Add(time.Duration(minutes) * time.Minute)
	return t.Format(asctimeLayout)
}

// parseManufactureDate reverses formatManufactureDate. It is used by the
// encoder to reconstruct the 3-byte minute count from a decoded
// BOARD_MANUFACTURE_DATE string.
func parseManufactureDate(s string) (uint32, error) {
	t, err := time.Parse(asctimeLayout, s)
	if err != nil {
		return 0, err
	}
	return uint32(t.Sub(intelEpoch) / time.Minute), nil
}

func decodeDateBytes(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func encodeDateBytes(minutes uint32) [3]byte {
	return [3]byte{
		byte(minutes),
		byte(minutes >> 8),
		byte(minutes >> 16),
	}
}
