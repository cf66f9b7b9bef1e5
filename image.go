package pagegrab

import (
	"context"
	"io"
	"iter"
	"strings"
	"time"
	"unicode/utf16"
)

// ImageExtension is appended to every downloaded image filename regardless of
// the actual image format.
const ImageExtension = ".jpg"

// ImageRef is an image URL paired with the title found next to it.
type ImageRef struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ImageScanner finds image references embedded in page text.
type ImageScanner interface {
	// Scan returns a lazy, finite sequence of references in the order they
	// appear in text. Each call starts a fresh scan.
	Scan(text string) iter.Seq[ImageRef]
}

// SanitizeTitle reduces a title to a filesystem-safe filename stem: every
// character outside [A-Za-z0-9] becomes '_' and the result is lower-cased.
// Characters are counted in UTF-16 code units, so one outside the Basic
// Multilingual Plane (most emoji) becomes "__".
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case utf16.RuneLen(r) == 2:
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ImageFilename returns the filename a downloaded image with title is stored under.
func ImageFilename(title string) string {
	return SanitizeTitle(title) + ImageExtension
}

// StoredImage describes an image written to storage.
type StoredImage struct {
	Path        string
	Bytes       int64
	ContentHash string
}

// ImageStore persists downloaded image bytes.
type ImageStore interface {
	// Save streams body to the file named after title and returns what was written.
	// A failed save leaves no partial file behind.
	Save(ctx context.Context, title string, body io.Reader) (*StoredImage, error)
}

// URLFilter tracks URLs already seen during a run.
type URLFilter interface {
	Add(url string)
	Test(url string) bool
}

// Download is one download attempt recorded in a ledger.
type Download struct {
	ID           string    `json:"id"`
	RunID        string    `json:"runId"`
	PageURL      string    `json:"pageUrl"`
	ImageURL     string    `json:"imageUrl"`
	Title        string    `json:"title"`
	FilePath     string    `json:"filePath"`
	Bytes        int64     `json:"bytes"`
	ContentHash  string    `json:"contentHash"`
	Error        string    `json:"error,omitempty"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

// Validate returns an error if the download contains invalid fields.
func (d *Download) Validate() error {
	if d.RunID == "" {
		return Errorf(EINVALID, "download run ID required")
	}
	if d.ImageURL == "" {
		return Errorf(EINVALID, "download image URL required")
	}
	return nil
}

// Succeeded reports whether the attempt produced a file.
func (d *Download) Succeeded() bool {
	return d.Error == ""
}

// DownloadFilter represents a filter for FindDownloads.
type DownloadFilter struct {
	RunID    *string `json:"runId"`
	ImageURL *string `json:"imageUrl"`

	// FailedOnly restricts results to attempts that recorded an error.
	FailedOnly bool `json:"failedOnly"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DownloadLedger records download attempts across runs.
type DownloadLedger interface {
	// RecordDownload stores an attempt, assigning its ID and timestamp.
	RecordDownload(ctx context.Context, d *Download) error

	// HasImage reports whether imageURL was downloaded successfully before.
	HasImage(ctx context.Context, imageURL string) (bool, error)

	// FindDownloads returns attempts matching the filter, newest first.
	FindDownloads(ctx context.Context, filter DownloadFilter) ([]*Download, error)
}
