package segment

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/exp/mmap"

	"github.com/AmrMurad1/Go-Backup/shared"
)

// Stream reads a run's segments back to back as one logical stream.
type Stream struct {
	segments []*mmap.ReaderAt
	reader   io.Reader
	size     int64
}

// Open maps segments 0, 1, ... of run until the first missing index.
func (s *Store) Open(run string) (*Stream, error) {
	if err := checkRun(run); err != nil {
		return nil, err
	}

	st := &Stream{}
	var readers []io.Reader
	for i := 0; i < shared.MaxSegments; i++ {
		ra, err := mmap.Open(s.path(run, i))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("mmap open failed: %w", err)
		}
		st.segments = append(st.segments, ra)
		readers = append(readers, io.NewSectionReader(ra, 0, int64(ra.Len())))
		st.size += int64(ra.Len())
	}
	st.reader = io.MultiReader(readers...)
	return st, nil
}

func (st *Stream) Read(p []byte) (int, error) {
	return st.reader.Read(p)
}

// Len is the total size of the stream.
func (st *Stream) Len() int64 { return st.size }

func (st *Stream) Segments() int { return len(st.segments) }

func (st *Stream) Close() error {
	var firstError error
	for _, ra := range st.segments {
		if err := ra.Close(); err != nil && firstError == nil {
			firstError = err
		}
	}
	st.segments = nil
	return firstError
}
