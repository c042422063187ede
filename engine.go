// Package backup implements an incremental backup engine that appends
// changed files of a source tree to size-capped archive segments.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AmrMurad1/Go-Backup/archive"
	"github.com/AmrMurad1/Go-Backup/config"
	"github.com/AmrMurad1/Go-Backup/index"
	"github.com/AmrMurad1/Go-Backup/logger"
	"github.com/AmrMurad1/Go-Backup/metrics"
	"github.com/AmrMurad1/Go-Backup/segment"
	"github.com/AmrMurad1/Go-Backup/shared"
	"github.com/AmrMurad1/Go-Backup/walk"
)

type Engine struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Run
	now     func() time.Time

	codec  archive.Codec
	hasher archive.Hasher
	order  index.Order
}

type Option func(*Engine)

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg: cfg,
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.codec, err = archive.ParseCodec(cfg.Compression); err != nil {
		return nil, err
	}
	if e.hasher, err = archive.NewHasher(cfg.Checksum); err != nil {
		return nil, err
	}
	if e.order, err = index.ParseOrder(cfg.ResolveOrder); err != nil {
		return nil, err
	}
	return e, nil
}

// Metrics returns the collectors of the latest Backup call, or nil before
// the first one. Each Backup starts from zero.
func (e *Engine) Metrics() *metrics.Run { return e.metrics }

// Backup runs one incremental backup of src into dst. Every file is
// compressed and compared against the index rebuilt from earlier runs;
// only new or changed files are appended to the new run. Any failure
// aborts the whole run.
func (e *Engine) Backup(ctx context.Context, src, dst string, progress shared.ProgressFunc) (summary *shared.Summary, err error) {
	started := e.now()
	if progress == nil {
		progress = func(shared.Progress) {}
	}

	srcAbs, err := checkDir("source", src)
	if err != nil {
		return nil, err
	}
	dstAbs, err := checkDir("destination", dst)
	if err != nil {
		return nil, err
	}
	if srcAbs == dstAbs {
		return nil, fmt.Errorf("%w: source and destination are the same directory", shared.ErrInvalidConfiguration)
	}

	store, err := segment.NewStore(dstAbs, e.cfg.SegmentSize, e.log)
	if err != nil {
		return nil, err
	}
	m := metrics.NewRun()
	e.metrics = m
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			summary, err = nil, cerr
		}
	}()

	e.log.Infof("listing already backed up files in %s", store.Dir())
	ix, err := e.buildIndex(store)
	if err != nil {
		return nil, err
	}
	m.IndexedPaths.Set(float64(ix.Len()))

	e.log.Infof("counting files in %s", srcAbs)
	files, err := walk.Walk(srcAbs, e.cfg.Filter(dstAbs))
	if err != nil {
		return nil, err
	}

	run, err := e.newRunName(store, started)
	if err != nil {
		return nil, err
	}
	e.log.Infof("run %s: %d candidate files", run, len(files))

	comp, err := archive.NewCompressor(e.codec)
	if err != nil {
		return nil, err
	}
	defer comp.Close()

	summary = &shared.Summary{Run: run, Files: len(files)}
	var buf []byte
	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(srcAbs, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		payload, err := comp.Compress(data)
		if err != nil {
			return nil, fmt.Errorf("compress %s: %w", rel, err)
		}
		m.FilesScanned.Inc()
		m.BytesRead.Add(float64(len(data)))

		skipped := ix.Unchanged(rel, e.hasher(payload))
		if skipped {
			summary.Skipped++
			m.FilesSkipped.Inc()
		} else {
			buf, err = archive.AppendRecord(buf[:0], rel, payload)
			if err != nil {
				return nil, err
			}
			if err := store.Write(run, buf); err != nil {
				return nil, err
			}
			summary.Written++
			summary.Bytes += int64(len(buf))
			m.FilesWritten.Inc()
			m.BytesWritten.Add(float64(len(buf)))
			e.log.Debugf("run %s: wrote %s (%d bytes)", run, rel, len(payload))
		}

		progress(shared.Progress{Index: i + 1, Total: len(files), Path: rel, Skipped: skipped})
	}

	summary.Duration = e.now().Sub(started)
	m.Finish(started)
	progress(shared.Progress{Index: len(files), Total: len(files), Done: true})
	e.log.Infof("run %s done: %d written, %d unchanged, %d bytes", run, summary.Written, summary.Skipped, summary.Bytes)

	if e.cfg.MetricsFile != "" {
		if err := m.WriteTextfile(e.cfg.MetricsFile); err != nil {
			e.log.Warnf("could not write metrics to %s: %v", e.cfg.MetricsFile, err)
		}
	}
	return summary, nil
}

func (e *Engine) buildIndex(store *segment.Store) (*index.Index, error) {
	return index.Build(store, index.Options{
		Order:  e.order,
		Hasher: e.hasher,
		Log:    e.log,
	})
}

// newRunName derives the run name from the start time, moving it past the
// latest existing run so that names stay unique and chronological.
func (e *Engine) newRunName(store *segment.Store, started time.Time) (string, error) {
	name := shared.RunName(started)
	runs, err := store.Runs()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 || name > runs[len(runs)-1] {
		return name, nil
	}

	latest := runs[len(runs)-1]
	t, err := time.Parse(shared.RunNameLayout, latest)
	if err != nil {
		e.log.Warnf("run %s does not follow the naming layout, ordering may be off", latest)
		return name, nil
	}
	if latest > shared.RunName(started.Add(time.Second)) {
		e.log.Warnf("clock is behind the latest run %s", latest)
	}
	return shared.RunName(t.Add(time.Millisecond)), nil
}

func checkDir(what, dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: %s directory not set", shared.ErrInvalidConfiguration, what)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", shared.ErrInvalidConfiguration, what, dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", shared.ErrInvalidConfiguration, what, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s %q is not a directory", shared.ErrInvalidConfiguration, what, dir)
	}
	return abs, nil
}
