// Package fs provides file-based storage for page snapshots, icons and images.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/pagegrab"
)

// Ensure Writer implements the pagegrab writer interfaces at compile time.
var (
	_ pagegrab.IconWriter   = (*Writer)(nil)
	_ pagegrab.HTMLArchiver = (*Writer)(nil)
)

// Writer writes page snapshots and icon files.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// SaveHTML writes html verbatim to path.
func (w *Writer) SaveHTML(ctx context.Context, path string, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFile(path, []byte(html))
}

// WriteIcons writes icons to path as a JSON array indented by two spaces.
// A nil slice is written as an empty array.
func (w *Writer) WriteIcons(ctx context.Context, path string, icons []*pagegrab.Icon) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodeIcons(icons)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// EncodeIcons returns the JSON document WriteIcons writes.
func EncodeIcons(icons []*pagegrab.Icon) ([]byte, error) {
	if icons == nil {
		icons = []*pagegrab.Icon{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(icons); err != nil {
		return nil, pagegrab.WrapError(pagegrab.EINTERNAL, err, "encoding icons")
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EnsureDir creates dir and any missing parents. An existing directory is
// not an error; any other failure, including dir being a regular file, is.
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0755)
	if err == nil || !errors.Is(err, iofs.ErrExist) {
		return err
	}
	info, statErr := os.Stat(dir)
	if statErr == nil && info.IsDir() {
		return nil
	}
	return err
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
