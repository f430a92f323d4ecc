package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hively/hively/internal/common"
)

// BucketPrefix tags cache buckets so foreign directories under the cache
// root are never evicted.
const BucketPrefix = "hively-cache-"

// Config carries the worker's build-time constants.
type Config struct {
	Origin   string
	Version  string
	Shell    []string
	Precache []string
}

// Worker owns the cache lifecycle. It moves through Install (pre-cache the
// shell) and Activate (evict stale versions), after which its bucket serves
// fetches through the Gateway.
type Worker struct {
	cache    *Cache
	bucket   *Bucket
	client   *http.Client
	origin   *url.URL
	shell    map[string]struct{}
	version  string
	precache []string
}

// New creates a worker. Install must be called before the bucket is used.
func New(cache *Cache, cfg Config) (*Worker, error) {
	origin, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", cfg.Origin, err)
	}

	shell := make(map[string]struct{}, len(cfg.Shell))
	for _, route := range cfg.Shell {
		shell[route] = struct{}{}
	}

	return &Worker{
		cache:    cache,
		origin:   origin,
		version:  cfg.Version,
		shell:    shell,
		precache: cfg.Precache,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// BucketName returns the versioned bucket name.
func (w *Worker) BucketName() string {
	return BucketPrefix + w.version
}

// Install opens the versioned bucket and pre-populates it with the shell
// routes and critical assets. A failed asset fetch is logged and skipped; a
// partial shell cache never aborts installation.
func (w *Worker) Install(ctx context.Context) error {
	bucket, err := w.cache.Open(w.BucketName())
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	w.bucket = bucket

	for _, path := range w.precache {
		var (
			status int
			header http.Header
			body   []byte
		)
		// Pre-caching happens once per version, so transient upstream
		// hiccups get a couple of quick retries before the asset is skipped.
		err := common.WithRetry(ctx, func() error {
			var fetchErr error
			status, header, body, fetchErr = w.fetch(ctx, path, nil)
			return fetchErr
		}, common.RetryOptions{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: time.Second})
		if err != nil {
			slog.Warn("failed to pre-cache asset", "path", path, "error", err)
			continue
		}
		if status != http.StatusOK {
			slog.Warn("skipping pre-cache asset", "path", path, "status", status)
			continue
		}
		if err := bucket.Put(path, status, header, body); err != nil {
			slog.Warn("failed to store pre-cache asset", "path", path, "error", err)
		}
	}

	slog.Info("worker installed", "bucket", bucket.Name(), "precache", len(w.precache))
	return nil
}

// Activate deletes every cache bucket whose version tag does not match the
// current one. This is the sole eviction mechanism. The worker serves
// immediately afterwards; there is no waiting period.
func (w *Worker) Activate(ctx context.Context) error {
	_ = ctx

	names, err := w.cache.Buckets()
	if err != nil {
		return fmt.Errorf("activate failed: %w", err)
	}

	for _, name := range names {
		if !strings.HasPrefix(name, BucketPrefix) || name == w.BucketName() {
			continue
		}
		if err := w.cache.Delete(name); err != nil {
			slog.Warn("failed to evict stale cache bucket", "bucket", name, "error", err)
			continue
		}
		slog.Info("evicted stale cache bucket", "bucket", name)
	}

	return nil
}

// Bucket returns the active bucket. Nil before Install.
func (w *Worker) Bucket() *Bucket {
	return w.bucket
}

// isShellRoute reports whether path is one of the enumerated shell routes.
func (w *Worker) isShellRoute(path string) bool {
	_, ok := w.shell[path]
	return ok
}

// fetch performs an upstream request for the given target (a path with an
// optional query string), reading the full body so the caller holds an
// independent copy.
func (w *Worker) fetch(ctx context.Context, target string, header http.Header) (int, http.Header, []byte, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("invalid request target %q: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.origin.ResolveReference(ref).String(), nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	copyHeader(req.Header, header)

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: upstream fetch failed: %v", common.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read upstream body: %w", err)
	}

	return resp.StatusCode, cloneHeader(resp.Header), body, nil
}

// hop-by-hop headers never stored or forwarded.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	copyHeader(out, h)
	return out
}

func copyHeader(dst, src http.Header) {
	for k, vals := range src {
		if _, hop := hopHeaders[http.CanonicalHeaderKey(k)]; hop {
			continue
		}
		for _, v := range vals {
			dst.Add(k, v)
		}
	}
}
