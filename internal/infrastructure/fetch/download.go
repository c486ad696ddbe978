package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"jarindexer/internal/domain"
)

const (
	defaultAttempts       = 3
	defaultAttemptTimeout = 60 * time.Second
	retryBackoff          = 500 * time.Millisecond
)

// Downloader fetches a file from one of several candidate URLs. Candidates
// are raced concurrently; the first complete download wins and the losers
// are cancelled.
type Downloader struct {
	client         *http.Client
	attempts       int
	attemptTimeout time.Duration
}

func NewDownloader(attempts int, attemptTimeout time.Duration) *Downloader {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	return &Downloader{
		client:         &http.Client{},
		attempts:       attempts,
		attemptTimeout: attemptTimeout,
	}
}

// Fetch downloads the first reachable candidate into dst. Each candidate
// downloads to its own temp file; only the winner is renamed into place, so
// dst is never partial. When every candidate is exhausted the errors are
// joined under ErrDownloadFailed.
func (d *Downloader) Fetch(ctx context.Context, urls []string, dst string) error {
	if len(urls) == 0 {
		return fmt.Errorf("%w: no candidate URLs", domain.ErrDownloadFailed)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		url  string
		path string
		err  error
	}
	results := make(chan outcome, len(urls))

	for _, u := range urls {
		go func(u string) {
			path, err := d.fetchWithRetries(raceCtx, u, filepath.Dir(dst))
			results <- outcome{url: u, path: path, err: err}
		}(u)
	}

	errs := make([]error, 0, len(urls))
	for range urls {
		res := <-results
		if res.err == nil {
			cancel()
			// Drain remaining outcomes in the background and discard their
			// temp files.
			go func(remaining int) {
				for i := 0; i < remaining; i++ {
					if r := <-results; r.path != "" {
						_ = os.Remove(r.path)
					}
				}
			}(cap(results) - len(errs) - 1)
			return os.Rename(res.path, dst)
		}
		errs = append(errs, fmt.Errorf("%s: %w", res.url, res.err))
	}

	return fmt.Errorf("%w: %w", domain.ErrDownloadFailed, errors.Join(errs...))
}

func (d *Downloader) fetchWithRetries(ctx context.Context, url, tmpDir string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		path, err := d.fetchOnce(ctx, url, tmpDir)
		if err == nil {
			return path, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, domain.ErrResourceNotFound) || errors.Is(err, domain.ErrPermissionDenied) {
			return "", err
		}
		if attempt == d.attempts {
			break
		}
		log.Printf("event=download_retry url=%q attempt=%d error=%q", url, attempt, err.Error())

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return "", lastErr
}

func (d *Downloader) fetchOnce(ctx context.Context, url, tmpDir string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", domain.ErrResourceNotFound, url)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: HTTP %d from %s", domain.ErrPermissionDenied, resp.StatusCode, url)
	default:
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmp, err := os.CreateTemp(tmpDir, ".download-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}
