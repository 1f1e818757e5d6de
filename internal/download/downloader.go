// Package download implements the streaming HTTPS downloader with retry,
// CDN-mirror fallback, and checksum verification (spec component C3).
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/terassyi/vx/internal/checksum"
	vxerrors "github.com/terassyi/vx/internal/errors"
)

// minSaneSize is the smallest file size considered a complete download;
// anything smaller is treated as truncated.
const minSaneSize = 1024

// DefaultRetries is the number of attempts per mirror before moving on.
const DefaultRetries = 3

// Downloader defines the interface for downloading and verifying artifacts.
type Downloader interface {
	// Download streams urls[0] to destPath via a resume-safe .part temp
	// file, trying each later entry of urls in order once the previous one
	// exhausts its retries. Returns the final path on success.
	Download(ctx context.Context, urls []string, destPath string) (string, error)

	// Verify verifies the checksum of a downloaded file. cs may be nil
	// (skip verification), carry a direct value, or a URL to fetch.
	Verify(ctx context.Context, filePath string, cs *checksum.Checksum) error
}

// Option configures an httpDownloader.
type Option func(*httpDownloader)

// WithHTTPClient overrides the HTTP client (used by tests to point at a
// local httptest.Server).
func WithHTTPClient(c *http.Client) Option {
	return func(d *httpDownloader) { d.client = c }
}

// WithRetries overrides the number of attempts per mirror.
func WithRetries(n int) Option {
	return func(d *httpDownloader) { d.retries = n }
}

// httpDownloader implements Downloader using HTTP.
type httpDownloader struct {
	client  *http.Client
	retries int
}

// NewDownloader creates a new Downloader with default timeouts and retry policy.
func NewDownloader(opts ...Option) Downloader {
	d := &httpDownloader{
		client: &http.Client{
			Timeout: 10 * time.Minute, // binary download ceiling, spec §4.3
		},
		retries: DefaultRetries,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download tries each URL in urls in order. For each URL it retries up to
// d.retries times on transient failures (connection errors, 408, 425, 429,
// 5xx) with exponential backoff (1s, 2s, 4s, ±20% jitter); non-transient
// failures (404, 403) fail that URL immediately and move to the next
// mirror. The destination is written under destPath+".part" and only
// renamed into place once a full, checksum-sized-sane body has landed.
func (d *httpDownloader) Download(ctx context.Context, urls []string, destPath string) (string, error) {
	if len(urls) == 0 {
		return "", fmt.Errorf("download: no URLs provided")
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	partPath := destPath + ".part"

	var lastErr error
	for mirrorIdx, url := range urls {
		err := d.downloadOnce(ctx, url, partPath)
		if err == nil {
			if err := os.Rename(partPath, destPath); err != nil {
				return "", fmt.Errorf("failed to finalize download: %w", err)
			}
			slog.Debug("download completed", "path", destPath, "mirror", mirrorIdx)
			return destPath, nil
		}
		lastErr = err
		slog.Debug("mirror exhausted, trying next", "url", url, "error", err)
	}

	os.Remove(partPath)
	return "", fmt.Errorf("all mirrors exhausted: %w", lastErr)
}

// downloadOnce attempts a single URL with the configured retry/backoff policy.
func (d *httpDownloader) downloadOnce(ctx context.Context, url, partPath string) error {
	var lastErr error
	for attempt := 0; attempt < d.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			jitter := time.Duration(rand.Int63n(int64(backoff) / 5)) // up to ±20%
			if rand.Intn(2) == 0 {
				backoff += jitter
			} else {
				backoff -= jitter
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.attemptDownload(ctx, url, partPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTransient(err) {
			return err
		}
		slog.Debug("transient download failure, retrying", "url", url, "attempt", attempt+1, "error", err)
	}
	return lastErr
}

// transientHTTPError tags an HTTP status code worth retrying.
type transientHTTPError struct {
	status int
}

func (e *transientHTTPError) Error() string {
	return fmt.Sprintf("transient HTTP status %d", e.status)
}

func isTransient(err error) bool {
	var httpErr *transientHTTPError
	if errors.As(err, &httpErr) {
		return true
	}
	// Network-level errors (connection reset, timeout, DNS) are always
	// worth a retry on the same mirror.
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (d *httpDownloader) attemptDownload(ctx context.Context, url, partPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return vxerrors.NewNetworkError(url, err) // network errors are transient; caller decides via isTransient
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through
	case resp.StatusCode == 408 || resp.StatusCode == 425 || resp.StatusCode == 429 || resp.StatusCode >= 500:
		return &transientHTTPError{status: resp.StatusCode}
	default:
		return vxerrors.NewHTTPError(url, resp.StatusCode)
	}

	f, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		f.Close()
	}()

	var dst io.Writer = f
	if cb := CallbackFromContext[ProgressCallback](ctx); cb != nil {
		dst = &progressWriter{w: f, cb: cb, total: resp.ContentLength}
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		os.Remove(partPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if n < minSaneSize {
		os.Remove(partPath)
		return fmt.Errorf("download truncated: got %d bytes, expected at least %d", n, minSaneSize)
	}

	return nil
}

// progressWriter reports cumulative bytes written to a ProgressCallback
// as the download streams to disk.
type progressWriter struct {
	w       io.Writer
	cb      ProgressCallback
	total   int64
	written int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.cb(p.written, p.total)
	return n, err
}

// Verify verifies the checksum of a downloaded file.
func (d *httpDownloader) Verify(ctx context.Context, filePath string, cs *checksum.Checksum) error {
	if cs == nil {
		slog.Debug("no checksum specified, skipping verification")
		return nil
	}

	slog.Debug("verifying checksum", "file", filePath)

	var expectedHash string
	var algorithm checksum.Algorithm

	switch {
	case cs.Value != "":
		alg, hash, err := checksum.Parse(cs.Value)
		if err != nil {
			os.Remove(filePath)
			return err
		}
		algorithm, expectedHash = alg, hash
	case cs.URL != "":
		filename := filepath.Base(filePath)
		if cs.FilePattern != "" {
			filename = cs.FilePattern
		}
		alg, hash, err := d.fetchChecksumFromURL(ctx, cs.URL, filename)
		if err != nil {
			return err
		}
		algorithm, expectedHash = alg, string(hash)
	default:
		slog.Debug("no checksum value or URL specified, skipping verification")
		return nil
	}

	if err := checksum.Verify(filePath, algorithm, expectedHash); err != nil {
		os.Remove(filePath)
		return err
	}

	slog.Debug("checksum verified", "algorithm", algorithm)
	return nil
}

// fetchChecksumFromURL fetches a checksums file from URL and extracts the
// hash for the given filename, auto-detecting GNU/BSD/Go-JSON/bare-hash
// format via internal/checksum.
func (d *httpDownloader) fetchChecksumFromURL(ctx context.Context, url, filename string) (checksum.Algorithm, checksum.Digest, error) {
	slog.Debug("fetching checksum file", "url", url, "filename", filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch checksum file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to fetch checksum file: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", "", fmt.Errorf("failed to read checksum file: %w", err)
	}

	return checksum.ParseFile(body, filename)
}
