// Package index rebuilds, from every run in a destination, the mapping of
// relative path to the checksum last recorded for it.
package index

// Index is an in-memory projection of the runs; it is never persisted.
type Index struct {
	list *skipList
}

func New() *Index {
	return &Index{list: newSkipList(18, 0.5)}
}

// Set overwrites any previous entry for e.Path.
func (ix *Index) Set(e Entry) {
	ix.list.Set(e)
}

func (ix *Index) Get(path string) (Entry, bool) {
	return ix.list.Get(path)
}

// Unchanged reports whether path is indexed with the given checksum.
func (ix *Index) Unchanged(path string, checksum uint64) bool {
	e, ok := ix.list.Get(path)
	return ok && e.Checksum == checksum
}

func (ix *Index) Len() int {
	return ix.list.Size()
}

// Prefix returns the entries under prefix sorted by path. An empty prefix
// returns every entry.
func (ix *Index) Prefix(prefix string) []Entry {
	if prefix == "" {
		return ix.list.All()
	}
	return ix.list.ScanPrefix(prefix)
}
