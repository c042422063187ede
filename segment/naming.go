package segment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AmrMurad1/Go-Backup/shared"
)

// FileName returns the on-disk name of segment index of run.
func FileName(run string, index int) string {
	return fmt.Sprintf("%s_%d%s", run, index, shared.SegmentExt)
}

// ParseFileName splits a segment file name into its run and index.
func ParseFileName(name string) (run string, index int, ok bool) {
	base, found := strings.CutSuffix(name, shared.SegmentExt)
	if !found {
		return "", 0, false
	}
	sep := strings.LastIndexByte(base, '_')
	if sep <= 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(base[sep+1:])
	if err != nil || index < 0 || index >= shared.MaxSegments {
		return "", 0, false
	}
	run = base[:sep]
	// reject non-canonical spellings such as "_007" or "_+1"
	if FileName(run, index) != name {
		return "", 0, false
	}
	return run, index, true
}

func checkRun(run string) error {
	if run == "" || strings.ContainsAny(run, `/\`) || run == "." || run == ".." {
		return fmt.Errorf("%w: bad run name %q", shared.ErrInvalidConfiguration, run)
	}
	return nil
}
