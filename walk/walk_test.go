package walk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(f), 0644))
	}
	return root
}

func TestWalkFiltersNamesAndExtensions(t *testing.T) {
	root := makeTree(t, "a/__pycache__/x.py", "a/keep.txt", "a/junk.tmp")

	got, err := Walk(root, NewFilter([]string{"__pycache__"}, []string{".tmp"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a/keep.txt"}, got)
}

func TestWalkBreadthFirst(t *testing.T) {
	root := makeTree(t, "top.txt", "a/b/c/deep.txt", "a/mid.txt", "z/other.txt")

	got, err := Walk(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"top.txt", "a/mid.txt", "z/other.txt", "a/b/c/deep.txt"}, got)
}

func TestWalkCaseInsensitive(t *testing.T) {
	root := makeTree(t, "Node_Modules/pkg.js", "src/Main.GO", "src/notes.TMP", "src/Program Files/x")

	f := NewFilter([]string{"node_modules", "PROGRAM FILES"}, []string{".TMP"}, nil)
	got, err := Walk(root, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Main.GO"}, got)
}

func TestWalkDefaultDenylist(t *testing.T) {
	root := makeTree(t,
		"project/main.py",
		"project/main.pyc",
		"project/venv/lib/site.py",
		"project/app.log.3",
		"project/Apps/thing.txt",
	)

	got, err := Walk(root, NewFilter(DefaultNames, DefaultExtensions, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"project/main.py"}, got)
}

func TestWalkSkipsPaths(t *testing.T) {
	root := makeTree(t, "data/file.txt", "backups/run_0.backup")

	got, err := Walk(root, NewFilter(nil, nil, []string{filepath.Join(root, "backups")}))
	require.NoError(t, err)
	assert.Equal(t, []string{"data/file.txt"}, got)
}

func TestWalkEmptyFilesAndDirs(t *testing.T) {
	root := makeTree(t, "empty.bin")
	require.NoError(t, os.WriteFile(filepath.Join(root, "empty.bin"), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nothing", "here"), 0755))

	got, err := Walk(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty.bin"}, got)
}

func TestWalkSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := makeTree(t, "real/file.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "file.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")))

	got, err := Walk(root, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"link.txt", "real/file.txt"}, got)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}

func TestExcluded(t *testing.T) {
	f := NewFilter([]string{"bin"}, []string{".log", "vbs", ""}, nil)
	assert.True(t, f.Excluded("BIN"))
	assert.True(t, f.Excluded("server.LOG"))
	assert.True(t, f.Excluded("script.vbs"))
	assert.True(t, f.Excluded("weirdvbs"))
	assert.False(t, f.Excluded("binary"))
	assert.False(t, f.Excluded("log"))
}
