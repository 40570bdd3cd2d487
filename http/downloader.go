// Package http provides an HTTP implementation of biblefetch.AudioDownloader.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/biblefetch"
)

// DefaultDownloadTimeout is the default timeout for a single audio download.
const DefaultDownloadTimeout = 2 * time.Minute

// DefaultUserAgent identifies the downloader to the audio host.
const DefaultUserAgent = "biblefetch/1.0"

// Ensure Downloader implements biblefetch.AudioDownloader at compile time.
var _ biblefetch.AudioDownloader = (*Downloader)(nil)

// Downloader retrieves binary audio over HTTP.
type Downloader struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultDownloadTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(dl *Downloader) {
		dl.userAgent = ua
	}
}

// NewDownloader creates a new HTTP Downloader.
func NewDownloader(opts ...Option) *Downloader {
	dl := &Downloader{
		timeout:   DefaultDownloadTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(dl)
	}

	dl.client = &http.Client{
		Timeout: dl.timeout,
	}

	return dl
}

// Download returns the body of a GET to url.
// Any status other than 200 is an error: 429 and 5xx are EUNAVAILABLE so
// callers may retry, everything else is EFETCH.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, biblefetch.Errorf(biblefetch.EINVALID, "invalid audio URL %q: %v", url, err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := biblefetch.EFETCH
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			code = biblefetch.EUNAVAILABLE
		}
		return nil, biblefetch.Errorf(code, "failed to download audio, HTTP status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio body: %w", err)
	}

	return body, nil
}
