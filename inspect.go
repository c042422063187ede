package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AmrMurad1/Go-Backup/archive"
	"github.com/AmrMurad1/Go-Backup/index"
	"github.com/AmrMurad1/Go-Backup/segment"
	"github.com/AmrMurad1/Go-Backup/shared"
)

func (e *Engine) openStore(dst string) (*segment.Store, error) {
	dstAbs, err := checkDir("destination", dst)
	if err != nil {
		return nil, err
	}
	return segment.NewStore(dstAbs, e.cfg.SegmentSize, e.log)
}

// Runs describes every run present in dst, oldest first.
func (e *Engine) Runs(dst string) ([]shared.RunInfo, error) {
	store, err := e.openStore(dst)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	runs, err := store.Runs()
	if err != nil {
		return nil, err
	}

	infos := make([]shared.RunInfo, 0, len(runs))
	for _, run := range runs {
		info := shared.RunInfo{Name: run}
		if info.Segments, info.Bytes, err = store.Usage(run); err != nil {
			return nil, err
		}
		err := index.ForEachRecord(store, run, func(int64, shared.Record) error {
			info.Records++
			return nil
		})
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Index returns the reconstructed index entries of dst whose path starts
// with prefix, sorted by path.
func (e *Engine) Index(dst, prefix string) ([]index.Entry, error) {
	store, err := e.openStore(dst)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ix, err := e.buildIndex(store)
	if err != nil {
		return nil, err
	}
	return ix.Prefix(prefix), nil
}

// Restore writes into target the version of every indexed path that the
// resolution order selects, and returns the number of files written.
func (e *Engine) Restore(ctx context.Context, dst, target string) (int, error) {
	store, err := e.openStore(dst)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if target == "" {
		return 0, fmt.Errorf("%w: restore target not set", shared.ErrInvalidConfiguration)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return 0, fmt.Errorf("%w: target %q: %v", shared.ErrInvalidConfiguration, target, err)
	}
	if err := os.MkdirAll(targetAbs, 0755); err != nil {
		return 0, err
	}

	ix, err := e.buildIndex(store)
	if err != nil {
		return 0, err
	}
	runs, err := store.Runs()
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, run := range runs {
		err := index.ForEachRecord(store, run, func(_ int64, rec shared.Record) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, ok := ix.Get(rec.Path)
			if !ok || entry.Run != run {
				return nil
			}
			if !filepath.IsLocal(filepath.FromSlash(rec.Path)) {
				return fmt.Errorf("%w: run %s: path %q escapes the restore target", shared.ErrCorruptArchive, run, rec.Path)
			}

			data, err := archive.Decompress(rec.Payload)
			if err != nil {
				return fmt.Errorf("run %s: %s: %w", run, rec.Path, err)
			}
			out := filepath.Join(targetAbs, filepath.FromSlash(rec.Path))
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			restored++
			return nil
		})
		if err != nil {
			return restored, err
		}
	}
	e.log.Infof("restored %d files from %d runs into %s", restored, len(runs), targetAbs)
	return restored, nil
}
