// Package fetcher downloads remote nameplate scans so they can be OCR'd like
// local files.
package fetcher

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/nameplate-cli/internal/config"
	"github.com/sells-group/nameplate-cli/internal/ocr"
	"github.com/sells-group/nameplate-cli/internal/resilience"
)

// ErrTooLarge is returned when a download exceeds Options.MaxBytes.
var ErrTooLarge = eris.New("download exceeds size limit")

// Fetcher saves a remote file under dir and returns the local path.
type Fetcher interface {
	DownloadToFile(ctx context.Context, rawURL, dir string) (string, error)
}

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	MaxBytes          int64
	MaxAttempts       int
	RequestsPerSecond float64
}

// OptionsFromConfig maps the fetch section of the config.
func OptionsFromConfig(cfg config.FetchConfig) Options {
	return Options{
		UserAgent:         cfg.UserAgent,
		Timeout:           time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxBytes:          cfg.MaxMB << 20,
		MaxAttempts:       cfg.MaxAttempts,
		RequestsPerSecond: cfg.RequestsPerSec,
	}
}

// HTTPFetcher implements Fetcher with per-host rate limiting and retries.
type HTTPFetcher struct {
	client *http.Client
	opts   Options
	retry  resilience.RetryConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates an HTTPFetcher. Zero options fall back to defaults.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "nameplate-cli/1.0"
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 20 << 20
	}
	retry := resilience.DefaultRetryConfig()
	if opts.MaxAttempts > 0 {
		retry.MaxAttempts = opts.MaxAttempts
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		retry:    retry,
		limiters: make(map[string]*rate.Limiter),
	}
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DownloadToFile fetches rawURL into a new file under dir. The file keeps an
// extension the OCR router understands, taken from the URL path or, failing
// that, from the Content-Type header.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL, dir string) (string, error) {
	if !IsURL(rawURL) {
		return "", eris.Errorf("fetcher: not an http(s) URL: %q", rawURL)
	}

	cfg := f.retry
	cfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("fetcher: retrying download",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return resilience.Do(ctx, cfg, func(ctx context.Context) (string, error) {
		return f.download(ctx, rawURL, dir)
	})
}

func (f *HTTPFetcher) download(ctx context.Context, rawURL, dir string) (string, error) {
	u, _ := url.Parse(rawURL)
	if lim := f.limiterFor(u.Host); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "fetcher: rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", resilience.StatusError("download", resp.StatusCode, body)
	}

	ext := extensionFor(u.Path, resp.Header.Get("Content-Type"))
	if ext == "" {
		return "", eris.Errorf("fetcher: cannot determine file type of %s (content-type %q)", rawURL, resp.Header.Get("Content-Type"))
	}

	out, err := os.CreateTemp(dir, "download-*"+ext)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create file")
	}
	n, err := io.Copy(out, io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	closeErr := out.Close()
	if err == nil && n > f.opts.MaxBytes {
		err = eris.Wrapf(ErrTooLarge, "fetcher: %s is over %d bytes", rawURL, f.opts.MaxBytes)
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return "", eris.Wrap(err, "fetcher: write file")
	}

	zap.L().Debug("fetcher: downloaded",
		zap.String("url", rawURL),
		zap.String("path", out.Name()),
		zap.Int64("bytes", n),
	)
	return out.Name(), nil
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	if f.opts.RequestsPerSecond <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.opts.RequestsPerSecond), 1)
		f.limiters[host] = lim
	}
	return lim
}

var contentTypeExt = map[string]string{
	"text/plain":      ".txt",
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/bmp":       ".bmp",
	"image/tiff":      ".tiff",
}

// extensionFor prefers a supported extension in the URL path over the
// response content type. Returns "" when neither is usable.
func extensionFor(urlPath, contentType string) string {
	if ext := strings.ToLower(path.Ext(urlPath)); ext != "" && ocr.Supported("x"+ext) {
		return ext
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return contentTypeExt[mt]
}
