// Package metrics collects per-run backup statistics on a private
// Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Run struct {
	Registry *prometheus.Registry

	FilesScanned prometheus.Counter
	FilesWritten prometheus.Counter
	FilesSkipped prometheus.Counter
	BytesRead    prometheus.Counter
	BytesWritten prometheus.Counter
	IndexedPaths prometheus.Gauge
	Duration     prometheus.Gauge
	LastSuccess  prometheus.Gauge
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Run{
		Registry: reg,
		FilesScanned: f.NewCounter(prometheus.CounterOpts{
			Name: "backup_files_scanned_total",
			Help: "Files considered by the run.",
		}),
		FilesWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "backup_files_written_total",
			Help: "Files emitted as new records.",
		}),
		FilesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "backup_files_skipped_total",
			Help: "Files unchanged since the indexed run.",
		}),
		BytesRead: f.NewCounter(prometheus.CounterOpts{
			Name: "backup_source_bytes_total",
			Help: "Uncompressed bytes read from the source tree.",
		}),
		BytesWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "backup_archive_bytes_total",
			Help: "Record bytes appended to segments.",
		}),
		IndexedPaths: f.NewGauge(prometheus.GaugeOpts{
			Name: "backup_indexed_paths",
			Help: "Paths in the reconstructed index at run start.",
		}),
		Duration: f.NewGauge(prometheus.GaugeOpts{
			Name: "backup_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp_seconds",
			Help: "Unix time the last run completed.",
		}),
	}
}

// Finish records the run duration and completion time.
func (r *Run) Finish(started time.Time) {
	r.Duration.Set(time.Since(started).Seconds())
	r.LastSuccess.SetToCurrentTime()
}

// WriteTextfile writes the registry in the text exposition format, for the
// node exporter textfile collector.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
