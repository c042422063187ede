package index

import (
	"fmt"
	"strings"

	"github.com/AmrMurad1/Go-Backup/archive"
	"github.com/AmrMurad1/Go-Backup/logger"
	"github.com/AmrMurad1/Go-Backup/segment"
	"github.com/AmrMurad1/Go-Backup/shared"
)

// Order selects which run wins when a path appears in several runs.
type Order string

const (
	// Newest replays runs oldest to newest so the latest record wins.
	Newest Order = "newest"
	// Oldest replays runs newest to oldest so the earliest record wins.
	// Kept for archives written by the legacy tool.
	Oldest Order = "oldest"
)

func ParseOrder(name string) (Order, error) {
	switch o := Order(strings.ToLower(name)); o {
	case Newest, Oldest:
		return o, nil
	case "":
		return Newest, nil
	default:
		return "", fmt.Errorf("%w: unknown resolve order %q", shared.ErrInvalidConfiguration, name)
	}
}

type Options struct {
	Order  Order
	Hasher archive.Hasher
	Log    logger.Logger
}

// ReplayOrder returns runs, given oldest first, in the order Build visits
// them.
func ReplayOrder(runs []string, order Order) []string {
	out := make([]string, len(runs))
	copy(out, runs)
	if order == Oldest {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Build replays every run in the store and records, per path, the checksum
// of its compressed payload. Later visits overwrite earlier ones.
func Build(store *segment.Store, opts Options) (*Index, error) {
	if opts.Hasher == nil {
		h, err := archive.NewHasher("")
		if err != nil {
			return nil, err
		}
		opts.Hasher = h
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	order, err := ParseOrder(string(opts.Order))
	if err != nil {
		return nil, err
	}

	runs, err := store.Runs()
	if err != nil {
		return nil, err
	}

	ix := New()
	for _, run := range ReplayOrder(runs, order) {
		n := 0
		err := ForEachRecord(store, run, func(_ int64, rec shared.Record) error {
			ix.Set(Entry{
				Path:     rec.Path,
				Checksum: opts.Hasher(rec.Payload),
				Run:      run,
				Size:     int64(len(rec.Payload)),
			})
			n++
			return nil
		})
		if err != nil {
			return nil, err
		}
		opts.Log.Debugf("index: run %s replayed %d records", run, n)
	}
	opts.Log.Infof("index: %d paths from %d runs", ix.Len(), len(runs))
	return ix, nil
}

// ForEachRecord streams the records of one run. The payload passed to fn
// is only valid for the duration of the call.
func ForEachRecord(store *segment.Store, run string, fn func(offset int64, rec shared.Record) error) error {
	st, err := store.Open(run)
	if err != nil {
		return err
	}
	defer st.Close()

	sc := archive.NewScanner(st, st.Len())
	for sc.Next() {
		if err := fn(sc.Offset(), sc.Record()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("run %s: %w", run, err)
	}
	return nil
}
