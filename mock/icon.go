package mock

import (
	"context"

	"github.com/fwojciec/pagegrab"
)

var (
	_ pagegrab.IconExtractor = (*IconExtractor)(nil)
	_ pagegrab.IconWriter    = (*IconWriter)(nil)
	_ pagegrab.HTMLArchiver  = (*HTMLArchiver)(nil)
	_ pagegrab.SVGRenderer   = (*SVGRenderer)(nil)
	_ pagegrab.SVGWriter     = (*SVGWriter)(nil)
)

// IconExtractor is a mock implementation of pagegrab.IconExtractor.
type IconExtractor struct {
	ExtractFn func(html string) ([]*pagegrab.Icon, error)
}

func (e *IconExtractor) Extract(html string) ([]*pagegrab.Icon, error) {
	return e.ExtractFn(html)
}

// IconWriter is a mock implementation of pagegrab.IconWriter.
type IconWriter struct {
	WriteIconsFn func(ctx context.Context, path string, icons []*pagegrab.Icon) error
}

func (w *IconWriter) WriteIcons(ctx context.Context, path string, icons []*pagegrab.Icon) error {
	return w.WriteIconsFn(ctx, path, icons)
}

// HTMLArchiver is a mock implementation of pagegrab.HTMLArchiver.
type HTMLArchiver struct {
	SaveHTMLFn func(ctx context.Context, path string, html string) error
}

func (a *HTMLArchiver) SaveHTML(ctx context.Context, path string, html string) error {
	return a.SaveHTMLFn(ctx, path, html)
}

// SVGRenderer is a mock implementation of pagegrab.SVGRenderer.
type SVGRenderer struct {
	RenderSVGFn func(icon *pagegrab.Icon) (string, error)
}

func (r *SVGRenderer) RenderSVG(icon *pagegrab.Icon) (string, error) {
	return r.RenderSVGFn(icon)
}

// SVGWriter is a mock implementation of pagegrab.SVGWriter.
type SVGWriter struct {
	WriteSVGsFn func(ctx context.Context, dir string, icons []*pagegrab.Icon) ([]string, error)
}

func (w *SVGWriter) WriteSVGs(ctx context.Context, dir string, icons []*pagegrab.Icon) ([]string, error) {
	return w.WriteSVGsFn(ctx, dir, icons)
}
