package fs

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagegrab"
)

// Ensure ImageStore implements pagegrab.ImageStore at compile time.
var _ pagegrab.ImageStore = (*ImageStore)(nil)

// ImageStore writes downloaded images into a folder.
// Each image is streamed to a temporary file in the folder and renamed into
// place once the stream completes, so a failed download leaves nothing behind.
type ImageStore struct {
	dir string
}

// NewImageStore creates an ImageStore rooted at dir. The directory must exist;
// see EnsureDir.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Dir returns the folder images are written to.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save streams body to <dir>/<sanitized title>.jpg, replacing any existing file.
func (s *ImageStore) Save(ctx context.Context, title string, body io.Reader) (*pagegrab.StoredImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	finalPath := filepath.Join(s.dir, pagegrab.ImageFilename(title))

	tmp, err := os.CreateTemp(s.dir, ".pagegrab-*.tmp")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()

	// CreateTemp uses 0600; images are written like every other output file.
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}

	digest := xxhash.New()
	n, err := io.Copy(io.MultiWriter(tmp, digest), &contextReader{ctx: ctx, r: body})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	return &pagegrab.StoredImage{
		Path:        finalPath,
		Bytes:       n,
		ContentHash: hex.EncodeToString(digest.Sum(nil)),
	}, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
