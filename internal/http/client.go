package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when no user agent is configured. The catalog
// serves a reduced page to unknown clients, so it looks like a browser.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the request may succeed when repeated.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	Burst             int
	MaxRetries        int
	Backoff           func(tries int) time.Duration
	Logger            *slog.Logger
}

// Client wraps HTTP operations for catalog pages and their assets.
//
// Client provides:
//   - a browser User-Agent header
//   - request pacing shared by every request of the client
//   - retries with backoff for network errors, 429 and 5xx responses
//   - file download with progress tracking
//
// Example usage:
//
//	client := NewClient(Options{RequestsPerSecond: 2})
//
//	html, err := client.GetString(ctx, "https://music.apple.com/us/album/1965/1817707266")
//
//	err = client.DownloadFile(ctx, previewURL, "/path/to/preview.m4a", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
	backoff    func(tries int) time.Duration
	log        *slog.Logger
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		log:        opts.Logger,
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = 60 * time.Second
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.backoff == nil {
		c.backoff = func(tries int) time.Duration {
			return time.Duration(500*(1<<tries)) * time.Millisecond
		}
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(1, opts.Burst))
	}
	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
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

// do sends a request with pacing and retries. The caller closes the body
// of the returned 200 response.
func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	var lastErr error
	for tries := 0; tries <= c.maxRetries; tries++ {
		if tries > 0 {
			wait := c.backoff(tries - 1)
			c.log.Debug("retrying request", "url", url, "attempt", tries+1, "wait", wait, "err", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			c.log.Debug("fetched", "method", method, "url", url)
			return resp, nil
		}

		resp.Body.Close()
		statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
		if !statusErr.Retryable() {
			return nil, statusErr
		}
		lastErr = statusErr
	}

	if lastErr == nil {
		lastErr = errors.New("request failed without error")
	}
	return nil, lastErr
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns *StatusError when the final response is not 200 OK.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
//
// Example:
//
//	html, err := client.GetString(ctx, "https://music.apple.com/us/song/california/1821538031")
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile downloads a file to destPath with an optional progress
// callback. The content is streamed to disk; a failed copy removes the
// partial file.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(destPath)
	}
	return err
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like artwork. For preview audio use
// DownloadFile to stream directly to disk.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
