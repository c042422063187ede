package index

import (
	"math/rand"
	"strings"
	"time"

	"github.com/AmrMurad1/Go-Backup/shared"
)

// Entry is the last recorded state of one backed-up path.
type Entry struct {
	Path     string
	Checksum uint64
	Run      string
	Size     int64
}

type skipList struct {
	maxLevel int
	p        float64
	level    int
	rand     *rand.Rand
	size     int
	head     *element
}

type element struct {
	Entry
	next []*element
}

func newSkipList(maxLevel int, p float64) *skipList {
	return &skipList{
		maxLevel: maxLevel,
		p:        p,
		level:    1,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		head: &element{
			next: make([]*element, maxLevel),
		},
	}
}

func (s *skipList) Size() int {
	return s.size
}

// search fills update with the rightmost element before path on each level.
func (s *skipList) search(path string, update []*element) *element {
	curr := s.head
	for i := s.maxLevel - 1; i >= 0; i-- {
		for curr.next[i] != nil && shared.ComparePaths(curr.next[i].Path, path) < 0 {
			curr = curr.next[i]
		}
		if update != nil {
			update[i] = curr
		}
	}
	return curr.next[0]
}

// Set inserts or overwrites the entry for entry.Path and reports whether
// the path was new.
func (s *skipList) Set(entry Entry) bool {
	update := make([]*element, s.maxLevel)
	next := s.search(entry.Path, update)

	if next != nil && next.Path == entry.Path {
		next.Entry = entry
		return false
	}

	level := s.randomLevel()
	if level > s.level {
		for i := s.level; i < level; i++ {
			update[i] = s.head
		}
		s.level = level
	}

	e := &element{
		Entry: entry,
		next:  make([]*element, level),
	}
	for i := 0; i < level; i++ {
		e.next[i] = update[i].next[i]
		update[i].next[i] = e
	}
	s.size++
	return true
}

func (s *skipList) Get(path string) (Entry, bool) {
	e := s.search(path, nil)
	if e != nil && e.Path == path {
		return e.Entry, true
	}
	return Entry{}, false
}

// ScanPrefix returns the entries whose path starts with prefix, in order.
func (s *skipList) ScanPrefix(prefix string) []Entry {
	var res []Entry
	for curr := s.search(prefix, nil); curr != nil && strings.HasPrefix(curr.Path, prefix); curr = curr.next[0] {
		res = append(res, curr.Entry)
	}
	return res
}

func (s *skipList) All() []Entry {
	all := make([]Entry, 0, s.size)
	for curr := s.head.next[0]; curr != nil; curr = curr.next[0] {
		all = append(all, curr.Entry)
	}
	return all
}

func (s *skipList) randomLevel() int {
	level := 1
	for s.rand.Float64() < s.p && level < s.maxLevel {
		level++
	}
	return level
}
