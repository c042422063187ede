// Package codec encodes the fixed-width big-endian length fields of the
// record stream.
package codec

import (
	"fmt"

	"github.com/AmrMurad1/Go-Backup/shared"
)

// MaxValue returns the largest value representable in width bytes.
func MaxValue(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<(8*uint(width)) - 1
}

// Encode returns n as exactly width big-endian bytes.
func Encode(n uint64, width int) ([]byte, error) {
	buf := make([]byte, width)
	if err := Put(buf, n); err != nil {
		return nil, err
	}
	return buf, nil
}

// Append encodes n into width bytes appended to dst.
func Append(dst []byte, n uint64, width int) ([]byte, error) {
	start := len(dst)
	dst = append(dst, make([]byte, width)...)
	if err := Put(dst[start:], n); err != nil {
		return dst[:start], err
	}
	return dst, nil
}

// Put writes n big-endian into all of dst, zero-padding on the left.
func Put(dst []byte, n uint64) error {
	width := len(dst)
	if width <= 0 {
		return fmt.Errorf("%w: width %d", shared.ErrOverflow, width)
	}
	if n > MaxValue(width) {
		return fmt.Errorf("%w: %d does not fit in %d bytes", shared.ErrOverflow, n, width)
	}
	for i := width - 1; i >= 0; i-- {
		dst[i] = byte(n)
		n >>= 8
	}
	return nil
}

// Decode interprets b as a big-endian unsigned integer. Only the low 8
// bytes are significant.
func Decode(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}
