package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/AmrMurad1/Go-Backup/codec"
	"github.com/AmrMurad1/Go-Backup/shared"
)

// Scanner iterates the records of a run stream of known size. A stream
// that does not end exactly on a record boundary is reported as
// shared.ErrCorruptArchive.
type Scanner struct {
	r         *bufio.Reader
	size      int64
	offset    int64
	recOffset int64
	rec       shared.Record
	payload   []byte
	hdr       [shared.PayloadLenWidth]byte
	err       error
}

func NewScanner(r io.Reader, size int64) *Scanner {
	return &Scanner{
		r:    bufio.NewReaderSize(r, 64<<10),
		size: size,
	}
}

// Next advances to the next record. The payload of the previous record is
// reused, so callers must copy it if they keep it.
func (s *Scanner) Next() bool {
	if s.err != nil || s.offset == s.size {
		return false
	}
	s.recOffset = s.offset

	nameLen, err := s.readLen(shared.NameLenWidth)
	if err != nil {
		s.err = err
		return false
	}
	if err := s.need(nameLen, "name"); err != nil {
		s.err = err
		return false
	}
	name := make([]byte, nameLen)
	if err := s.read(name, "name"); err != nil {
		s.err = err
		return false
	}

	payloadLen, err := s.readLen(shared.PayloadLenWidth)
	if err != nil {
		s.err = err
		return false
	}
	if err := s.need(payloadLen, "payload"); err != nil {
		s.err = err
		return false
	}
	if uint64(cap(s.payload)) < payloadLen {
		s.payload = make([]byte, payloadLen)
	}
	s.payload = s.payload[:payloadLen]
	if err := s.read(s.payload, "payload"); err != nil {
		s.err = err
		return false
	}

	s.rec = shared.Record{Path: string(name), Payload: s.payload}
	return true
}

func (s *Scanner) readLen(width int) (uint64, error) {
	if err := s.need(uint64(width), "length field"); err != nil {
		return 0, err
	}
	buf := s.hdr[:width]
	if err := s.read(buf, "length field"); err != nil {
		return 0, err
	}
	return codec.Decode(buf), nil
}

func (s *Scanner) need(n uint64, what string) error {
	if n > uint64(s.size-s.offset) {
		return fmt.Errorf("%w: %s of %d bytes at offset %d overruns stream of %d bytes",
			shared.ErrCorruptArchive, what, n, s.offset, s.size)
	}
	return nil
}

func (s *Scanner) read(buf []byte, what string) error {
	n, err := io.ReadFull(s.r, buf)
	s.offset += int64(n)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s truncated at offset %d", shared.ErrCorruptArchive, what, s.offset)
	}
	return err
}

func (s *Scanner) Record() shared.Record { return s.rec }

// Offset is the stream position where the current record starts.
func (s *Scanner) Offset() int64 { return s.recOffset }

func (s *Scanner) Err() error { return s.err }

// ParseAll decodes a complete in-memory stream.
func ParseAll(data []byte) ([]shared.Record, error) {
	var records []shared.Record
	sc := NewScanner(bytes.NewReader(data), int64(len(data)))
	for sc.Next() {
		rec := sc.Record()
		records = append(records, shared.Record{
			Path:    rec.Path,
			Payload: bytes.Clone(rec.Payload),
		})
	}
	return records, sc.Err()
}
