// Package archive frames backed-up files into the run record stream:
// [nameLen:2][name][payloadLen:5][payload], lengths big-endian.
package archive

import (
	"fmt"
	"slices"

	"github.com/AmrMurad1/Go-Backup/codec"
	"github.com/AmrMurad1/Go-Backup/shared"
)

// RecordSize is the encoded size of a record.
func RecordSize(path string, payload []byte) int {
	return shared.RecordOverhead + len(path) + len(payload)
}

// AppendRecord appends the encoded record to dst. On error dst is returned
// unchanged.
func AppendRecord(dst []byte, path string, payload []byte) ([]byte, error) {
	start := len(dst)
	dst = slices.Grow(dst, RecordSize(path, payload))

	dst, err := codec.Append(dst, uint64(len(path)), shared.NameLenWidth)
	if err != nil {
		return dst[:start], fmt.Errorf("record name %q: %w", abbrev(path), err)
	}
	dst = append(dst, path...)

	dst, err = codec.Append(dst, uint64(len(payload)), shared.PayloadLenWidth)
	if err != nil {
		return dst[:start], fmt.Errorf("record payload of %q: %w", abbrev(path), err)
	}
	return append(dst, payload...), nil
}

func abbrev(path string) string {
	if len(path) <= 64 {
		return path
	}
	return path[:30] + "..." + path[len(path)-30:]
}
