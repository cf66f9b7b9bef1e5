package mock

import (
	"context"
	"io"
	"iter"

	"github.com/fwojciec/pagegrab"
)

var (
	_ pagegrab.ImageScanner   = (*ImageScanner)(nil)
	_ pagegrab.ImageStore     = (*ImageStore)(nil)
	_ pagegrab.URLFilter      = (*URLFilter)(nil)
	_ pagegrab.DownloadLedger = (*DownloadLedger)(nil)
)

// ImageScanner is a mock implementation of pagegrab.ImageScanner.
type ImageScanner struct {
	ScanFn func(text string) iter.Seq[pagegrab.ImageRef]
}

func (s *ImageScanner) Scan(text string) iter.Seq[pagegrab.ImageRef] {
	return s.ScanFn(text)
}

// ImageStore is a mock implementation of pagegrab.ImageStore.
type ImageStore struct {
	SaveFn func(ctx context.Context, title string, body io.Reader) (*pagegrab.StoredImage, error)
}

func (s *ImageStore) Save(ctx context.Context, title string, body io.Reader) (*pagegrab.StoredImage, error) {
	return s.SaveFn(ctx, title, body)
}

// URLFilter is a mock implementation of pagegrab.URLFilter.
type URLFilter struct {
	AddFn  func(url string)
	TestFn func(url string) bool
}

func (f *URLFilter) Add(url string) {
	f.AddFn(url)
}

func (f *URLFilter) Test(url string) bool {
	return f.TestFn(url)
}

// DownloadLedger is a mock implementation of pagegrab.DownloadLedger.
type DownloadLedger struct {
	RecordDownloadFn func(ctx context.Context, d *pagegrab.Download) error
	HasImageFn       func(ctx context.Context, imageURL string) (bool, error)
	FindDownloadsFn  func(ctx context.Context, filter pagegrab.DownloadFilter) ([]*pagegrab.Download, error)
}

func (l *DownloadLedger) RecordDownload(ctx context.Context, d *pagegrab.Download) error {
	return l.RecordDownloadFn(ctx, d)
}

func (l *DownloadLedger) HasImage(ctx context.Context, imageURL string) (bool, error) {
	return l.HasImageFn(ctx, imageURL)
}

func (l *DownloadLedger) FindDownloads(ctx context.Context, filter pagegrab.DownloadFilter) ([]*pagegrab.Download, error) {
	return l.FindDownloadsFn(ctx, filter)
}
