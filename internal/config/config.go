// Package config loads the querykit configuration file.
//
// The file is YAML and decoded strictly, so a misspelled key is an error
// rather than a silently ignored setting:
//
//	columns:
//	  - name: age
//	    path: $.age
//	    type: int
//	normalize:
//	  max_clauses: 64
//	log_level: info
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"querykit/internal/logging"
	"querykit/internal/predicate"
	"querykit/internal/schema"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for a configuration that parses but cannot
// be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the decoded configuration file.
type Config struct {
	// Columns declares the record columns filters may reference.
	Columns []schema.Spec `yaml:"columns"`
	// Normalize holds the DNF normalization settings.
	Normalize Normalize `yaml:"normalize"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Normalize configures the DNF normalizer.
type Normalize struct {
	// MaxClauses bounds the number of clauses normalization may produce.
	// Zero means unlimited.
	MaxClauses int `yaml:"max_clauses"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{LogLevel: "info"}
}

// Load reads the configuration at path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML configuration. Keys left out keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings and the column declarations.
func (c *Config) Validate() error {
	if c.Normalize.MaxClauses < 0 {
		return fmt.Errorf("%w: normalize.max_clauses must not be negative, got %d", ErrInvalidConfig, c.Normalize.MaxClauses)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Schema(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the parsed log level. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	return logging.ParseLevel(c.LogLevel)
}

// Schema compiles the declared columns.
func (c *Config) Schema() (*schema.Schema, error) {
	return schema.New(c.Columns...)
}

// Normalizer returns a normalizer with the configured clause limit.
func (c *Config) Normalizer(logger *slog.Logger) *predicate.Normalizer {
	return predicate.NewNormalizer(
		predicate.WithMaxClauses(c.Normalize.MaxClauses),
		predicate.WithLogger(logger),
	)
}
