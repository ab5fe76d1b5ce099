// Package home manages the querykit home directory layout.
//
// Layout:
//
//	<root>/
//	  config.yaml    (column declarations and normalizer settings)
package home

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir represents a querykit home directory.
type Dir struct {
	root string
}

// New creates a Dir with an explicit root path.
func New(root string) Dir {
	return Dir{root: root}
}

// Default returns a Dir using the platform-appropriate default location:
//   - Linux:   ~/.config/querykit
//   - macOS:   ~/Library/Application Support/querykit
//   - Windows: %APPDATA%/querykit
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("determine config directory: %w", err)
	}
	return Dir{root: filepath.Join(base, "querykit")}, nil
}

// Root returns the home directory path.
func (d Dir) Root() string {
	return d.root
}

// ConfigPath returns the path to the configuration file.
func (d Dir) ConfigPath() string {
	return filepath.Join(d.root, "config.yaml")
}

// EnsureExists creates the home directory (and parents) if it doesn't exist.
func (d Dir) EnsureExists() error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("create home directory %s: %w", d.root, err)
	}
	return nil
}

// WriteConfig writes data as the configuration file unless one exists.
// It reports whether the file was written.
func (d Dir) WriteConfig(data []byte) (bool, error) {
	if err := d.EnsureExists(); err != nil {
		return false, err
	}
	p := d.ConfigPath()
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //nolint:gosec // G304: path is constructed from trusted home dir + constant filename
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", p, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", p, err)
	}
	return true, nil
}
