package shared

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOverflow             = errors.New("length overflow")
	ErrSegmentExhausted     = errors.New("segment limit exhausted")
	ErrCorruptArchive       = errors.New("corrupt archive")
)
