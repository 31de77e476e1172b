package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/perini/anexos-downloader/internal/model"
)

// Client wraps HTTP operations with the configured user agent and timeout.
//
// Client provides:
//   - Configured User-Agent header on every request
//   - Timeout handling
//   - Page retrieval as a byte stream
//   - File download streamed straight to disk
//
// Example usage:
//
//	client := NewClient(settings.UserAgent, settings.TimeoutDuration())
//
//	// Fetch HTML content
//	body, _, err := client.Open(ctx, pageURL)
//
//	// Download file with progress
//	n, err := client.DownloadFile(ctx, fileURL, "/downloads/Anexo_I.pdf", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// A zero timeout leaves requests bounded only by their context.
func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// ProgressWriter wraps a writer to track download progress.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Open performs a GET request and returns the response body.
//
// The caller must close the returned body. Returns an error wrapping
// model.ErrInvalidURL if the request cannot be built, or model.ErrFetch if
// the request fails or the status is not 2xx.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", model.ErrFetch, rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: %s: HTTP %d", model.ErrFetch, rawURL, resp.StatusCode)
	}

	return resp.Body, resp.ContentLength, nil
}

// Get performs a GET request and returns the response body as bytes.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := c.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", model.ErrFetch, rawURL, err)
	}
	return data, nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The file is created (or truncated if it exists) only once the server has
// answered with a 2xx status, and the body is streamed directly to disk.
// onProgress, when set, is called once right after the file is created and
// then after every write.
//
// Returns the number of bytes written. Filesystem errors wrap
// model.ErrWrite; network and read errors wrap model.ErrFetch.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) (int64, error) {
	body, total, err := c.Open(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrWrite, err)
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		onProgress(0, total)
		writer = &ProgressWriter{
			Writer:   file,
			Total:    total,
			OnUpdate: onProgress,
		}
	}

	n, err := copyBody(writer, body)
	if err != nil {
		return n, err
	}
	if err := file.Close(); err != nil {
		return n, fmt.Errorf("%w: %v", model.ErrWrite, err)
	}
	return n, nil
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", model.ErrInvalidURL, rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// copyBody copies src to dst and tells read failures from write failures.
func copyBody(dst io.Writer, src io.Reader) (int64, error) {
	ew := &errWriter{w: dst}
	n, err := io.Copy(ew, src)
	if err == nil {
		return n, nil
	}
	if ew.err != nil && errors.Is(err, ew.err) {
		return n, fmt.Errorf("%w: %v", model.ErrWrite, err)
	}
	return n, fmt.Errorf("%w: read body: %v", model.ErrFetch, err)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
