package shared

import "time"

// Record is one backed-up file inside a run's stream.
type Record struct {
	Path    string
	Payload []byte
}

// Progress is reported to the caller after each file is considered.
type Progress struct {
	Index   int
	Total   int
	Path    string
	Skipped bool
	Done    bool
}

// Percent returns the completed share of the run in the range 0-100.
func (p Progress) Percent() int {
	if p.Done || p.Total == 0 {
		return 100
	}
	return p.Index * 100 / p.Total
}

type ProgressFunc func(Progress)

type RunInfo struct {
	Name     string
	Segments int
	Bytes    int64
	Records  int
}

type Summary struct {
	Run      string
	Files    int
	Written  int
	Skipped  int
	Bytes    int64
	Duration time.Duration
}

// RunName derives the run identifier from the backup start time.
func RunName(t time.Time) string {
	return t.UTC().Format(RunNameLayout)
}

func ComparePaths(p1, p2 string) int {
	if p1 < p2 {
		return -1
	} else if p1 > p2 {
		return 1
	}
	return 0
}
