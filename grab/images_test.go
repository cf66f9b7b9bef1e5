package grab_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fwojciec/pagegrab"
	"github.com/fwojciec/pagegrab/bloom"
	"github.com/fwojciec/pagegrab/fs"
	"github.com/fwojciec/pagegrab/grab"
	pghttp "github.com/fwojciec/pagegrab/http"
	"github.com/fwojciec/pagegrab/mock"
	"github.com/fwojciec/pagegrab/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// The scanner only matches https URLs, so the page points at a
		// placeholder host and the streamer is redirected to the test server.
		fmt.Fprint(w, `{"imageUrl":"https://img.example/cat.jpg","title":"Cat"},{"imageUrl":"https://img.example/dog.jpg","title":"Dog House"}`)
	})
	mux.HandleFunc("/cat.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("cat-bytes"))
	})
	mux.HandleFunc("/dog.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("dog-bytes"))
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	fetcher := pghttp.NewFetcher()
	streamer := &mock.Streamer{
		StreamFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
			return fetcher.Stream(ctx, strings.Replace(url, "https://img.example", server.URL, 1))
		},
	}

	dir := filepath.Join(t.TempDir(), "downloaded_images")
	p := &grab.ImagePipeline{
		Fetcher:   fetcher,
		Streamer:  streamer,
		Scanner:   scan.NewScanner(),
		Store:     fs.NewImageStore(dir),
		EnsureDir: fs.EnsureDir,
		Seen:      bloom.NewFilter(bloom.DefaultExpectedURLs, bloom.DefaultFalsePositive),
	}

	report, err := p.Run(context.Background(), pagegrab.Config{URL: server.URL, DownloadFolder: dir})
	require.NoError(t, err)
	require.False(t, report.Failed(), "failures: %v", report.Failures)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 2, report.Downloaded())

	cat, err := os.ReadFile(filepath.Join(dir, "cat.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "cat-bytes", string(cat))

	dog, err := os.ReadFile(filepath.Join(dir, "dog_house.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "dog-bytes", string(dog))
}

func refs(rs ...pagegrab.ImageRef) *mock.ImageScanner {
	return &mock.ImageScanner{
		ScanFn: func(text string) iter.Seq[pagegrab.ImageRef] {
			return slices.Values(rs)
		},
	}
}

// newImagePipeline returns a pipeline whose collaborators all succeed.
// Saved titles are appended to saved.
func newImagePipeline(saved *[]string) *grab.ImagePipeline {
	return &grab.ImagePipeline{
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "page", nil
			},
		},
		Streamer: &mock.Streamer{
			StreamFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("data:" + url)), nil
			},
		},
		Scanner: refs(
			pagegrab.ImageRef{URL: "https://a.example/1.jpg", Title: "one"},
			pagegrab.ImageRef{URL: "https://a.example/2.jpg", Title: "two"},
		),
		Store: &mock.ImageStore{
			SaveFn: func(ctx context.Context, title string, body io.Reader) (*pagegrab.StoredImage, error) {
				data, err := io.ReadAll(body)
				if err != nil {
					return nil, err
				}
				*saved = append(*saved, title)
				return &pagegrab.StoredImage{
					Path:  filepath.Join("dir", pagegrab.ImageFilename(title)),
					Bytes: int64(len(data)),
				}, nil
			},
		},
		EnsureDir: func(dir string) error { return nil },
		NewRunID:  func() string { return "run-1" },
	}
}

func TestImagePipeline_Run(t *testing.T) {
	t.Parallel()

	cfg := pagegrab.Config{URL: "https://example.com", DownloadFolder: "dir"}

	t.Run("downloads every match in order", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, saved)
		assert.Equal(t, "run-1", report.RunID)
		assert.Equal(t, "dir", report.Folder)
		assert.Equal(t, 2, report.Matched)
		assert.Equal(t, 2, report.Downloaded())
		assert.False(t, report.Failed())
	})

	t.Run("uses default folder", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		var ensured string
		p.EnsureDir = func(dir string) error {
			ensured = dir
			return nil
		}

		report, err := p.Run(context.Background(), pagegrab.Config{URL: "https://example.com"})

		require.NoError(t, err)
		assert.Equal(t, pagegrab.DefaultDownloadFolder, ensured)
		assert.Equal(t, pagegrab.DefaultDownloadFolder, report.Folder)
	})

	t.Run("returns error when directory cannot be created", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		fetched := false
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				fetched = true
				return "", nil
			},
		}
		p.EnsureDir = func(dir string) error { return errors.New("permission denied") }

		report, err := p.Run(context.Background(), cfg)

		require.Error(t, err)
		assert.Equal(t, pagegrab.EINTERNAL, pagegrab.ErrorCode(err))
		assert.False(t, fetched)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, pagegrab.StageDirectory, report.Failures[0].Stage)
	})

	t.Run("fetch failure downloads nothing", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "", errors.New("timeout")
			},
		}

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Empty(t, saved)
		assert.Zero(t, report.Matched)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, pagegrab.StageFetch, report.Failures[0].Stage)
	})

	t.Run("continues after a failed download", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.Scanner = refs(
			pagegrab.ImageRef{URL: "https://a.example/bad.jpg", Title: "bad"},
			pagegrab.ImageRef{URL: "https://a.example/good.jpg", Title: "good"},
		)
		p.Streamer = &mock.Streamer{
			StreamFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
				if strings.Contains(url, "bad") {
					return nil, errors.New("404")
				}
				return io.NopCloser(strings.NewReader("ok")), nil
			},
		}

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, []string{"good"}, saved)
		assert.Equal(t, 2, report.Matched)
		assert.Equal(t, 1, report.Downloaded())
		require.Len(t, report.Failures, 1)
		assert.Equal(t, pagegrab.StageDownload, report.Failures[0].Stage)
		require.Len(t, report.Downloads, 2)
		assert.Error(t, report.Downloads[0].Err)
	})

	t.Run("fail fast stops at first failed download", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.FailFast = true
		p.Store = &mock.ImageStore{
			SaveFn: func(ctx context.Context, title string, body io.Reader) (*pagegrab.StoredImage, error) {
				saved = append(saved, title)
				return nil, errors.New("disk full")
			},
		}

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, []string{"one"}, saved)
		assert.Equal(t, 1, report.Matched)
		assert.Zero(t, report.Downloaded())
	})

	t.Run("skips urls repeated in the page", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.Scanner = refs(
			pagegrab.ImageRef{URL: "https://a.example/1.jpg", Title: "one"},
			pagegrab.ImageRef{URL: "https://a.example/1.jpg", Title: "again"},
		)
		seen := map[string]bool{}
		p.Seen = &mock.URLFilter{
			AddFn:  func(url string) { seen[url] = true },
			TestFn: func(url string) bool { return seen[url] },
		}

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, []string{"one"}, saved)
		assert.Equal(t, 2, report.Matched)
		require.Len(t, report.Downloads, 2)
		assert.True(t, report.Downloads[1].Skipped)
		assert.Equal(t, grab.SkipDuplicate, report.Downloads[1].SkipReason)
	})

	t.Run("records attempts in the ledger", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.Scanner = refs(
			pagegrab.ImageRef{URL: "https://a.example/ok.jpg", Title: "ok"},
			pagegrab.ImageRef{URL: "https://a.example/bad.jpg", Title: "bad"},
		)
		p.Streamer = &mock.Streamer{
			StreamFn: func(ctx context.Context, url string) (io.ReadCloser, error) {
				if strings.Contains(url, "bad") {
					return nil, errors.New("connection reset")
				}
				return io.NopCloser(strings.NewReader("12345")), nil
			},
		}
		var recorded []*pagegrab.Download
		p.Ledger = &mock.DownloadLedger{
			RecordDownloadFn: func(ctx context.Context, d *pagegrab.Download) error {
				recorded = append(recorded, d)
				return nil
			},
		}

		_, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		require.Len(t, recorded, 2)
		assert.Equal(t, "run-1", recorded[0].RunID)
		assert.Equal(t, "https://example.com", recorded[0].PageURL)
		assert.Equal(t, "https://a.example/ok.jpg", recorded[0].ImageURL)
		assert.Equal(t, filepath.Join("dir", "ok.jpg"), recorded[0].FilePath)
		assert.Equal(t, int64(5), recorded[0].Bytes)
		assert.Empty(t, recorded[0].Error)
		assert.Equal(t, "connection reset", recorded[1].Error)
		assert.Empty(t, recorded[1].FilePath)
	})

	t.Run("skips images the ledger already holds", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.SkipKnown = true
		p.Ledger = &mock.DownloadLedger{
			HasImageFn: func(ctx context.Context, imageURL string) (bool, error) {
				return imageURL == "https://a.example/1.jpg", nil
			},
			RecordDownloadFn: func(ctx context.Context, d *pagegrab.Download) error {
				return nil
			},
		}

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, []string{"two"}, saved)
		assert.True(t, report.Downloads[0].Skipped)
		assert.Equal(t, grab.SkipKnown, report.Downloads[0].SkipReason)
	})

	t.Run("ledger failure does not stop downloads", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		p.Ledger = &mock.DownloadLedger{
			RecordDownloadFn: func(ctx context.Context, d *pagegrab.Download) error {
				return errors.New("database is locked")
			},
		}

		report, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Downloaded())
		require.Len(t, report.Failures, 2)
		assert.Equal(t, pagegrab.StageLedger, report.Failures[0].Stage)
	})

	t.Run("waits on the limiter before each image", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		var waited []string
		p.Limiter = &mock.RateLimiter{
			WaitFn: func(ctx context.Context, rawURL string) error {
				waited = append(waited, rawURL)
				return nil
			},
		}

		_, err := p.Run(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example/1.jpg", "https://a.example/2.jpg"}, waited)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		t.Parallel()

		var saved []string
		p := newImagePipeline(&saved)
		ctx, cancel := context.WithCancel(context.Background())
		p.Limiter = &mock.RateLimiter{
			WaitFn: func(ctx context.Context, rawURL string) error {
				cancel()
				return ctx.Err()
			},
		}

		report, err := p.Run(ctx, cfg)

		require.NoError(t, err)
		assert.Empty(t, saved)
		assert.Equal(t, 1, report.Matched)
		require.Len(t, report.Failures, 1)
		assert.ErrorIs(t, report.Failures[0], context.Canceled)
	})
}
