// Package fetch implements the Fetcher and Downloader interfaces.
// It reads documentation index pages and downloads published ZIP bundles
// over HTTP, keeping downloads in a cache directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gaurav-prasanna/flaremd/core"
	"github.com/gaurav-prasanna/flaremd/core/logfields"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultDownloadTimeout = 10 * time.Minute
	defaultUserAgent       = "flaremd/1.0 (https://github.com/gaurav-prasanna/flaremd)"
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected HTTP status")

// HTTPFetcher fetches web pages and files via HTTP.
type HTTPFetcher struct {
	client   *http.Client
	download *http.Client
	logger   *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient replaces both HTTP clients.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = c
		f.download = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates an HTTPFetcher with sensible timeouts.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		download: &http.Client{Timeout: defaultDownloadTimeout},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch retrieves the HTML content of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	resp, err := f.get(ctx, f.client, rawURL, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

// Download saves rawURL as dir/<last path segment>. An existing file is
// reused unless force is set.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL, dir string, force bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("no file name in %s", rawURL)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	dest := filepath.Join(dir, name)

	if !force {
		if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
			f.logger.Info("using cached download", logfields.Path(dest))
			return dest, nil
		}
	}

	start := time.Now()
	resp, err := f.get(ctx, f.download, rawURL, "*/*")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("moving download into place: %w", err)
	}

	f.logger.Info("downloaded",
		logfields.URL(rawURL),
		logfields.Path(dest),
		slog.Int64("bytes", n),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return dest, nil
}

func (f *HTTPFetcher) get(ctx context.Context, c *http.Client, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w %d for %s", ErrStatus, resp.StatusCode, rawURL)
	}
	return resp, nil
}
