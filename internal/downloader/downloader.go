package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"webgrab/pkg/config"
	"webgrab/pkg/errors"
	"webgrab/pkg/logger"
	"webgrab/pkg/ratelimit"
	"webgrab/pkg/storage"
)

// Status classifies the outcome of a single image download
type Status string

const (
	StatusSaved     Status = "saved"
	StatusDuplicate Status = "skipped_duplicate"
	StatusTooSmall  Status = "skipped_too_small"
	StatusFailed    Status = "failed"
)

// Result is the per-URL outcome of a download. Saved, skipped, and failed
// are distinguishable so the caller never has to guess why nothing was
// written.
type Result struct {
	URL       string
	Status    Status
	SavedPath string
	Size      int64
	Duration  time.Duration
	Err       error
}

// Downloader fetches image bytes over HTTP and files accepted payloads
// through the storage manager.
type Downloader struct {
	client    *http.Client
	storage   *storage.Manager
	minSize   int64
	userAgent string
	limiter   ratelimit.Limiter
	logger    logger.Logger
}

// New creates a downloader with the configured timeout and size filter
func New(cfg *config.DownloadConfig, store *storage.Manager, limiter ratelimit.Limiter, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Downloader{
		client: &http.Client{
			Timeout: cfg.DownloadTimeout,
		},
		storage:   store,
		minSize:   cfg.MinFileSize,
		userAgent: cfg.UserAgent,
		limiter:   limiter,
		logger:    log,
	}
}

// Download fetches one image URL and files it into the destination folder.
// Network and HTTP failures become a failed Result; duplicates and payloads
// under the minimum size become skips. No partial file is ever left behind.
func (d *Downloader) Download(ctx context.Context, imageURL, destDir string) Result {
	start := time.Now()
	result := Result{URL: imageURL}

	data, err := d.fetch(ctx, imageURL)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Size = int64(len(data))

	filename := storage.FilenameFor(imageURL, data)

	if d.storage.Exists(destDir, filename) {
		result.Status = StatusDuplicate
		result.SavedPath = ""
		result.Duration = time.Since(start)
		return result
	}

	if result.Size < d.minSize {
		result.Status = StatusTooSmall
		result.Duration = time.Since(start)
		return result
	}

	path, saved, err := d.storage.SaveImage(destDir, filename, data)
	if err != nil {
		result.Status = StatusFailed
		result.Err = errors.Wrap(errors.ErrorTypeStorage, err)
		result.Duration = time.Since(start)
		return result
	}
	if !saved {
		// Another worker won the race for the same content.
		result.Status = StatusDuplicate
		result.Duration = time.Since(start)
		return result
	}

	result.Status = StatusSaved
	result.SavedPath = path
	result.Duration = time.Since(start)
	return result
}

// fetch performs the HTTP GET and returns the raw response bytes
func (d *Downloader) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeFetch, err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errType := errors.ErrorTypeFetch
		if resp.StatusCode >= 500 {
			errType = errors.ErrorTypeServer
		}
		return nil, &errors.Error{
			Type:    errType,
			Message: fmt.Sprintf("unexpected status fetching %s", imageURL),
			Code:    resp.StatusCode,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeFetch, err)
	}
	return data, nil
}
