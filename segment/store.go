package segment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/AmrMurad1/Go-Backup/logger"
	"github.com/AmrMurad1/Go-Backup/shared"
)

// Store appends run streams into size-capped segment files inside one
// destination directory. It assumes exclusive access to that directory.
type Store struct {
	mu      sync.Mutex
	dir     string
	maxSize int64
	log     logger.Logger
	cursors map[string]*cursor
}

// cursor tracks the segment currently receiving writes for a run.
type cursor struct {
	index int
	size  int64
	file  *os.File
}

func NewStore(dir string, maxSize int64, log logger.Logger) (*Store, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: segment size %d", shared.ErrInvalidConfiguration, maxSize)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: destination %q: %v", shared.ErrInvalidConfiguration, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: destination %q is not a directory", shared.ErrInvalidConfiguration, dir)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		dir:     dir,
		maxSize: maxSize,
		log:     log,
		cursors: make(map[string]*cursor),
	}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(run string, index int) string {
	return filepath.Join(s.dir, FileName(run, index))
}

// Write appends data to the run's stream, spilling into following segments
// whenever the current one reaches the size cap. Either all of data fits in
// the run's remaining segments or nothing is written.
func (s *Store) Write(run string, data []byte) error {
	if err := checkRun(run); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		return nil
	}

	c, err := s.cursor(run)
	if err != nil {
		return err
	}

	free := int64(shared.MaxSegments-c.index)*s.maxSize - c.size
	if int64(len(data)) > free {
		return fmt.Errorf("%w: run %s needs %d bytes, %d left in %d segments",
			shared.ErrSegmentExhausted, run, len(data), free, shared.MaxSegments)
	}

	for len(data) > 0 {
		if c.size >= s.maxSize {
			if err := c.close(); err != nil {
				return fmt.Errorf("segment %s: %w", s.path(run, c.index), err)
			}
			c.index++
			c.size = 0
		}
		if c.file == nil {
			path := s.path(run, c.index)
			file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("segment %q cannot open file: %w", path, err)
			}
			s.log.Debugf("segment %s opened at %d bytes", filepath.Base(path), c.size)
			c.file = file
		}

		n := min(int64(len(data)), s.maxSize-c.size)
		written, err := c.file.Write(data[:n])
		c.size += int64(written)
		if err != nil {
			return fmt.Errorf("segment %s write: %w", s.path(run, c.index), err)
		}
		data = data[n:]
	}
	return nil
}

// cursor returns the write position of run, locating the first segment
// that is missing or still has headroom on first use.
func (s *Store) cursor(run string) (*cursor, error) {
	if c, ok := s.cursors[run]; ok {
		return c, nil
	}
	c := &cursor{index: shared.MaxSegments}
	for i := 0; i < shared.MaxSegments; i++ {
		info, err := os.Stat(s.path(run, i))
		if errors.Is(err, fs.ErrNotExist) {
			c.index = i
			break
		}
		if err != nil {
			return nil, err
		}
		if info.Size() < s.maxSize {
			c.index = i
			c.size = info.Size()
			break
		}
	}
	s.cursors[run] = c
	return c, nil
}

func (c *cursor) close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Sync()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	c.file = nil
	return err
}

// ReadAll returns the run's full stream, or an empty slice when the run has
// no segments.
func (s *Store) ReadAll(run string) ([]byte, error) {
	st, err := s.Open(run)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	buf := bytes.NewBuffer(make([]byte, 0, st.Len()))
	if _, err := io.Copy(buf, st); err != nil {
		return nil, fmt.Errorf("read run %s: %w", run, err)
	}
	return buf.Bytes(), nil
}

// Usage reports how many segments run has and their combined size.
func (s *Store) Usage(run string) (segments int, size int64, err error) {
	if err := checkRun(run); err != nil {
		return 0, 0, err
	}
	for i := 0; i < shared.MaxSegments; i++ {
		info, err := os.Stat(s.path(run, i))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return 0, 0, err
		}
		segments++
		size += info.Size()
	}
	return segments, size, nil
}

// Runs lists the runs present in the directory, oldest first.
func (s *Store) Runs() ([]string, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read backup directory: %w", err)
	}

	seen := make(map[string]struct{})
	var runs []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		run, _, ok := ParseFileName(file.Name())
		if !ok {
			continue
		}
		if _, dup := seen[run]; dup {
			continue
		}
		seen[run] = struct{}{}
		runs = append(runs, run)
	}
	sort.Strings(runs)
	return runs, nil
}

// Close syncs and closes every open segment.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstError error
	for run, c := range s.cursors {
		if err := c.close(); err != nil && firstError == nil {
			firstError = fmt.Errorf("close run %s: %w", run, err)
		}
	}
	s.cursors = make(map[string]*cursor)
	return firstError
}
