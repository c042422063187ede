// Package config loads the engine settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AmrMurad1/Go-Backup/archive"
	"github.com/AmrMurad1/Go-Backup/codec"
	"github.com/AmrMurad1/Go-Backup/index"
	"github.com/AmrMurad1/Go-Backup/shared"
	"github.com/AmrMurad1/Go-Backup/walk"
)

type Config struct {
	// Archive format
	SegmentSize  int64  `yaml:"segment_size"`
	Compression  string `yaml:"compression"`
	Checksum     string `yaml:"checksum"`
	ResolveOrder string `yaml:"resolve_order"`

	// Traversal
	ExcludeNames      []string `yaml:"exclude_names"`
	ExcludeExtensions []string `yaml:"exclude_extensions"`

	// Observability
	LogLevel    string `yaml:"log_level"`
	MetricsFile string `yaml:"metrics_file"`
}

func Default() *Config {
	return &Config{
		SegmentSize:       shared.DefaultSegmentSize,
		Compression:       string(archive.Zstd),
		Checksum:          archive.Murmur3,
		ResolveOrder:      string(index.Newest),
		ExcludeNames:      append([]string(nil), walk.DefaultNames...),
		ExcludeExtensions: append([]string(nil), walk.DefaultExtensions...),
		LogLevel:          "info",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file at %s: %v", shared.ErrInvalidConfiguration, path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config %s: %v", shared.ErrInvalidConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	// a segment must fit in the payload length field and the run capacity
	// must stay within int64
	if c.SegmentSize <= 0 || uint64(c.SegmentSize) > codec.MaxValue(shared.PayloadLenWidth) {
		return fmt.Errorf("%w: segment_size %d out of range", shared.ErrInvalidConfiguration, c.SegmentSize)
	}
	if _, err := archive.ParseCodec(c.Compression); err != nil {
		return err
	}
	if _, err := archive.NewHasher(c.Checksum); err != nil {
		return err
	}
	if _, err := index.ParseOrder(c.ResolveOrder); err != nil {
		return err
	}
	return nil
}

func (c *Config) Filter(skip ...string) *walk.Filter {
	return walk.NewFilter(c.ExcludeNames, c.ExcludeExtensions, skip)
}
