package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/pagegrab"
)

// Ensure SVGWriter implements pagegrab.SVGWriter at compile time.
var _ pagegrab.SVGWriter = (*SVGWriter)(nil)

// SVGWriter writes vector icons as numbered .svg files.
type SVGWriter struct {
	renderer pagegrab.SVGRenderer
}

// NewSVGWriter creates an SVGWriter that renders icons with r.
func NewSVGWriter(r pagegrab.SVGRenderer) *SVGWriter {
	return &SVGWriter{renderer: r}
}

// SVGFilename returns the filename of the n-th (1-based) vector icon.
func SVGFilename(n int) string {
	return fmt.Sprintf("icon-%03d.svg", n)
}

// WriteSVGs writes each vector icon to dir, numbering files in icon order.
// Image icons are skipped.
func (w *SVGWriter) WriteSVGs(ctx context.Context, dir string, icons []*pagegrab.Icon) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var paths []string
	n := 0
	for _, icon := range icons {
		if icon.Kind != pagegrab.IconVector {
			continue
		}
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		n++

		doc, err := w.renderer.RenderSVG(icon)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, SVGFilename(n))
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
