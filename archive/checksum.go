package archive

import (
	"fmt"
	"hash/adler32"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"

	"github.com/AmrMurad1/Go-Backup/shared"
)

// Hasher computes the change-detection checksum of a compressed payload.
// It is not an integrity guarantee.
type Hasher func(payload []byte) uint64

const (
	Murmur3 = "murmur3"
	XXHash  = "xxhash"
	Adler32 = "adler32"
)

func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case Murmur3, "":
		return func(p []byte) uint64 { return uint64(murmur3.Sum32(p)) }, nil
	case XXHash:
		return xxhash.Sum64, nil
	case Adler32:
		return func(p []byte) uint64 { return uint64(adler32.Checksum(p)) }, nil
	default:
		return nil, fmt.Errorf("%w: unsupported checksum: %s", shared.ErrInvalidConfiguration, name)
	}
}
