package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"querykit/internal/predicate"
	"querykit/internal/querylang"
	"querykit/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
columns:
  - name: age
    path: $.age
    type: int
  - name: city
    path: $.address.city
    type: string
normalize:
  max_clauses: 4
log_level: debug
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []schema.Spec{
		{Name: "age", Path: "$.age", Type: schema.Int},
		{Name: "city", Path: "$.address.city", Type: schema.String},
	}, cfg.Columns)
	assert.Equal(t, 4, cfg.Normalize.MaxClauses)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	s, err := cfg.Schema()
	require.NoError(t, err)
	_, ok := s.Column("city")
	assert.True(t, ok)
}

func TestParseDefaults(t *testing.T) {
	for _, data := range []string{"", "columns: []\n", "log_level: info\n"} {
		cfg, err := Parse([]byte(data))
		require.NoError(t, err, "%q", data)
		assert.Empty(t, cfg.Columns)
		assert.Zero(t, cfg.Normalize.MaxClauses)
		assert.Equal(t, "info", cfg.LogLevel)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"unknown key", "colums: []\n", false},
		{"unknown nested key", "normalize:\n  max_clause: 3\n", false},
		{"malformed", "columns: [\n", false},
		{"negative limit", "normalize:\n  max_clauses: -1\n", true},
		{"bad level", "log_level: loud\n", true},
		{"bad type", "columns:\n  - {name: a, path: $.a, type: decimal}\n", true},
		{"duplicate column", "columns:\n  - {name: a, path: $.a, type: int}\n  - {name: a, path: $.b, type: int}\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidConfig), "error: %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Columns, 2)

	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))
	_, err = Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), path)
}

func TestNormalizer(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	s, err := cfg.Schema()
	require.NoError(t, err)

	n, err := querylang.NewCompiler(s, nil).Compile("(age = 1 OR age = 2) AND (city = a OR city = b OR city = c)")
	require.NoError(t, err)

	_, err = cfg.Normalizer(nil).Normalize(n)
	require.ErrorIs(t, err, predicate.ErrTooManyClauses)

	dnf, err := Default().Normalizer(nil).Normalize(n)
	require.NoError(t, err)
	assert.Equal(t, 6, predicate.ClauseCount(dnf))
}
