// Package config loads the reader CLI's YAML configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Runtime RuntimeConfig `yaml:"runtime"`
	Output  OutputConfig  `yaml:"output"`
}

type RuntimeConfig struct {
	ReaderIndex *int `yaml:"reader_index"`
}

type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // "table" (default) or "json"
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Output.Format) == "" {
		c.Output.Format = "table"
	}
}

// Validate checks that required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.Runtime.ReaderIndex == nil {
		return fmt.Errorf("config.runtime.reader_index is required")
	}
	if *c.Runtime.ReaderIndex < 0 {
		return fmt.Errorf("config.runtime.reader_index must be >= 0")
	}
	switch c.Output.Format {
	case "table", "json":
	default:
		return fmt.Errorf("config.output.format must be \"table\" or \"json\", got %q", c.Output.Format)
	}
	return nil
}
