package muxdedup

import (
	"bytes"
	"fmt"
)

// UnknownCounter is the per-scan-cycle counter behind UNKNOWN<n> names.
// It is owned by the caller (RescanController) and reset to zero at the
// start of every scan cycle, per spec.md §9's "Globals" note and the
// original daemon's UNKNOWN_BUS_OBJECT_COUNT reset.
type UnknownCounter struct {
	n int
}

func (c *UnknownCounter) next() string {
	c.n++
	return fmt.Sprintf("UNKNOWN%d", c.n)
}

// Resolve decides whether candidate should be published, and under what
// name, against the entries already resolved earlier in this scan
// cycle.
func Resolve(candidate Candidate, published []PublishedEntry, checker SysfsMuxChecker, unknown *UnknownCounter) Decision {
	productName := candidate.Fields["BOARD_PRODUCT_NAME"]
	if productName == "" {
		productName = candidate.Fields["PRODUCT_PRODUCT_NAME"]
	}
	if productName == "" {
		productName = unknown.next()
	}

	baseName := sanitize(productName)

	if candidate.Bus <= 0 {
		return Decision{
			Action:     ActionPublish,
			BaseName:   baseName,
			ObjectPath: ObjectNamespace + baseName,
		}
	}

	var collisions []PublishedEntry
	for _, e := range published {
		if e.BaseName == baseName {
			collisions = append(collisions, e)
		}
	}

	for _, other := range collisions {
		muxRelated := checker.IsMuxChild(candidate.Bus) || checker.IsMuxChild(other.Bus)
		sameAddress := other.Address == candidate.Address
		sameRaw := bytes.Equal(other.Raw, candidate.Raw)
		if muxRelated && sameAddress && sameRaw {
			return Decision{Action: ActionSuppress, BaseName: baseName}
		}
	}

	objectPath := ObjectNamespace + baseName
	if n := len(collisions); n > 0 {
		objectPath = fmt.Sprintf("%s_%d", objectPath, n)
	}

	return Decision{
		Action:     ActionPublish,
		BaseName:   baseName,
		ObjectPath: objectPath,
	}
}

func sanitize(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			out[i] = c
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}
