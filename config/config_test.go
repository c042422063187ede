package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmrMurad1/Go-Backup/shared"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, shared.DefaultSegmentSize, cfg.SegmentSize)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, "murmur3", cfg.Checksum)
	assert.Equal(t, "newest", cfg.ResolveOrder)
	assert.Contains(t, cfg.ExcludeNames, "__pycache__")
	assert.Contains(t, cfg.ExcludeExtensions, ".tmp")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
segment_size: 1048576
compression: zlib
checksum: xxhash
resolve_order: oldest
exclude_names: [node_modules]
exclude_extensions: [".bak"]
log_level: debug
metrics_file: /tmp/backup.prom
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), cfg.SegmentSize)
	assert.Equal(t, "zlib", cfg.Compression)
	assert.Equal(t, "xxhash", cfg.Checksum)
	assert.Equal(t, "oldest", cfg.ResolveOrder)
	assert.Equal(t, []string{"node_modules"}, cfg.ExcludeNames)
	assert.Equal(t, []string{".bak"}, cfg.ExcludeExtensions)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/backup.prom", cfg.MetricsFile)

	f := cfg.Filter()
	assert.True(t, f.Excluded("old.BAK"))
	assert.False(t, f.Excluded("x.tmp"))
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "compression: lz4\n"))
	require.NoError(t, err)
	assert.Equal(t, "lz4", cfg.Compression)
	assert.Equal(t, shared.DefaultSegmentSize, cfg.SegmentSize)
	assert.Contains(t, cfg.ExcludeNames, "venv")
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"zero segment":     "segment_size: 0\n",
		"huge segment":     "segment_size: 1099511627776\n",
		"bad codec":        "compression: rar\n",
		"bad checksum":     "checksum: sha1\n",
		"bad order":        "resolve_order: random\n",
		"malformed yaml":   "segment_size: [1,\n",
		"wrong value type": "segment_size: big\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, shared.ErrInvalidConfiguration)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, shared.ErrInvalidConfiguration)
}
