package pagegrab_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/pagegrab"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pagegrab.Errorf(pagegrab.ENOTFOUND, "download %q not found", "abc")

	assert.Equal(t, pagegrab.ENOTFOUND, pagegrab.ErrorCode(err))
	assert.Equal(t, "download \"abc\" not found", pagegrab.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagegrab.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagegrab.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	inner := pagegrab.Errorf(pagegrab.EINVALID, "bad url")
	err := fmt.Errorf("fetch: %w", inner)

	assert.Equal(t, pagegrab.EINVALID, pagegrab.ErrorCode(err))
	assert.Equal(t, "bad url", pagegrab.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, pagegrab.EINTERNAL, pagegrab.ErrorCode(err))
	assert.Equal(t, "Internal error", pagegrab.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	inner := errors.New("disk full")
	err := pagegrab.WrapError(pagegrab.EINTERNAL, inner, "writing %s", "icons.json")

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "writing icons.json")
	assert.Contains(t, err.Error(), "disk full")
}

func TestStageError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := &pagegrab.StageError{Stage: pagegrab.StageFetch, Err: inner}

	assert.Equal(t, "fetch: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestImageReport_Downloaded(t *testing.T) {
	t.Parallel()

	report := &pagegrab.ImageReport{
		Downloads: []*pagegrab.DownloadResult{
			{Stored: &pagegrab.StoredImage{Path: "a.jpg"}},
			{Err: errors.New("timeout")},
			{Skipped: true, SkipReason: "duplicate"},
			{Stored: &pagegrab.StoredImage{Path: "b.jpg"}},
		},
	}

	assert.Equal(t, 2, report.Downloaded())
	assert.False(t, report.Failed())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "absolute https url", url: "https://example.com/page"},
		{name: "absolute http url", url: "http://localhost:8080"},
		{name: "empty url", url: "", wantErr: true},
		{name: "relative url", url: "/page", wantErr: true},
		{name: "missing host", url: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &pagegrab.Config{URL: tt.url}
			err := cfg.Validate()

			if tt.wantErr {
				assert.Equal(t, pagegrab.EINVALID, pagegrab.ErrorCode(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
