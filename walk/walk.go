// Package walk enumerates the files of a source tree breadth first,
// pruning denylisted names and extensions.
package walk

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultNames are base names never backed up, compared case-insensitively.
var DefaultNames = []string{
	"__pycache__", "venv", ".venv", "_venv", "_venv2", "_venv3", "~bromium", "bromium", ".iso",
	".iso.zip", "virtualbox vms", "vbox.log", "vboxhardening.log", "$winreagent", "apps", "onedrivetemp",
	"programdata", "program files", "program files (x86)", "swsetup", "windows", "system32", "bin", "dev",
	"lib32", "libx32", "opt", "recovery", "run", "srv", "tmp", "var", "boot", "lib", "lib64",
	"lost+found", "proc", "sbin", "sys", "usr", "jars", "libraries", ".bash_history", ".python_history",
	".local", ".config", ".cache", "swap", ".swap",
}

// DefaultExtensions are name suffixes never backed up.
var DefaultExtensions = []string{
	".dat", ".ini", ".exe", ".dll", ".deb", ".dmg", ".app", ".asp", ".bat", ".com", ".gadget", ".inf",
	".ink", ".msi", ".prg", ".reg", ".scr", "shs", "vbs", ".bin", ".class", ".vxd", ".ocx", ".vmf",
	".pkg", ".ipa", ".rpm", ".apk", ".exe.zip", ".bc", "blf", ".cache", ".crdownload", ".dmp",
	".download", ".part", ".partial", ".temp", ".tmp", ".rsc", ".upd", ".upg", ".swap",
	".vbox", ".vbox-prev", ".vdi", ".iso", ".iso.zip", ".bromium", ".log", ".log.0", ".log.1",
	".log.2", ".log.3", ".log.4", ".log.5", ".log.6", ".log.7", ".log.8", ".log.9", ".log.10",
	".log.11", ".log.12", ".log.13", ".log.14", ".log.15", ".log0", ".log1", ".log2", ".log3",
	".log4", ".log5", ".log6", ".log7", ".log8", ".log9", ".log10", ".log11", ".log12", ".log13",
	".log14", ".log15", ".pyc",
}

// Filter decides which entries of the tree are pruned.
type Filter struct {
	names map[string]struct{}
	exts  []string
	skip  map[string]struct{}
}

// NewFilter builds a filter from name and extension denylists. skip holds
// paths (absolute or relative to the working directory) pruned as a whole.
func NewFilter(names, exts, skip []string) *Filter {
	f := &Filter{
		names: make(map[string]struct{}, len(names)),
		skip:  make(map[string]struct{}, len(skip)),
	}
	for _, n := range names {
		f.names[strings.ToLower(n)] = struct{}{}
	}
	for _, e := range exts {
		if e != "" {
			f.exts = append(f.exts, strings.ToLower(e))
		}
	}
	for _, p := range skip {
		if abs, err := filepath.Abs(p); err == nil {
			f.skip[abs] = struct{}{}
		}
	}
	return f
}

// Excluded reports whether an entry with this base name is denylisted.
func (f *Filter) Excluded(name string) bool {
	lower := strings.ToLower(name)
	if _, ok := f.names[lower]; ok {
		return true
	}
	for _, ext := range f.exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Walk returns the slash-separated paths, relative to root, of every file
// that survives the filter, in breadth-first order. Symlinked directories
// are not descended.
func Walk(root string, f *Filter) ([]string, error) {
	if f == nil {
		f = NewFilter(nil, nil, nil)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	queue := []string{""}
	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(filepath.Join(absRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", rel, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if f.Excluded(name) {
				continue
			}
			child := path.Join(rel, name)
			full := filepath.Join(absRoot, filepath.FromSlash(child))
			if _, skip := f.skip[full]; skip {
				continue
			}

			switch mode := entry.Type(); {
			case mode.IsDir():
				queue = append(queue, child)
			case mode.IsRegular():
				files = append(files, child)
			case mode&os.ModeSymlink != 0:
				info, err := os.Stat(full)
				if err == nil && info.Mode().IsRegular() {
					files = append(files, child)
				}
			}
		}
	}
	return files, nil
}
