package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/pagegrab"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pagegrab.DownloadLedger = (*LedgerService)(nil)

// LedgerService implements pagegrab.DownloadLedger using SQLite.
type LedgerService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(db *DB) *LedgerService {
	return &LedgerService{db: db, Now: time.Now}
}

// RecordDownload stores a download attempt with a generated ID and timestamp.
func (s *LedgerService) RecordDownload(ctx context.Context, d *pagegrab.Download) error {
	if err := d.Validate(); err != nil {
		return err
	}

	d.ID = uuid.New().String()
	d.DownloadedAt = s.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO downloads (id, run_id, page_url, image_url, title, file_path, bytes, content_hash, error, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.RunID, d.PageURL, d.ImageURL, d.Title, d.FilePath, d.Bytes, d.ContentHash, d.Error,
		d.DownloadedAt.Format(timeFormat))

	return err
}

// HasImage reports whether imageURL has at least one successful download.
func (s *LedgerService) HasImage(ctx context.Context, imageURL string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM downloads WHERE image_url = ? AND error = ''
	`, imageURL).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindDownloads retrieves attempts matching the filter, newest first.
func (s *LedgerService) FindDownloads(ctx context.Context, filter pagegrab.DownloadFilter) ([]*pagegrab.Download, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, run_id, page_url, image_url, title, file_path, bytes, content_hash, error, downloaded_at
		FROM downloads WHERE 1=1`)

	if filter.RunID != nil {
		query.WriteString(" AND run_id = ?")
		args = append(args, *filter.RunID)
	}
	if filter.ImageURL != nil {
		query.WriteString(" AND image_url = ?")
		args = append(args, *filter.ImageURL)
	}
	if filter.FailedOnly {
		query.WriteString(" AND error != ''")
	}

	query.WriteString(" ORDER BY downloaded_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	downloads := make([]*pagegrab.Download, 0)
	for rows.Next() {
		var d pagegrab.Download
		var downloadedAt string
		if err := rows.Scan(&d.ID, &d.RunID, &d.PageURL, &d.ImageURL, &d.Title, &d.FilePath,
			&d.Bytes, &d.ContentHash, &d.Error, &downloadedAt); err != nil {
			return nil, err
		}
		if d.DownloadedAt, err = parseTime(downloadedAt, "downloaded_at"); err != nil {
			return nil, err
		}
		downloads = append(downloads, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return downloads, nil
}
