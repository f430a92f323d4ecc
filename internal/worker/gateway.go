package worker

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hively/hively/internal/snapshot"
)

// Gateway intercepts every fetch under the worker's scope and applies the
// delivery policy: non-GET requests pass straight through, navigations are
// network-first with a cached-shell fallback, and static assets are
// cache-first. It also hosts the local data API the shell reads its state
// from, and the notification-click endpoint. Handlers catch everything
// internally; an escaped error here would break the page's networking
// entirely.
type Gateway struct {
	worker    *Worker
	snapshots *snapshot.Manager
	clicks    *ClickHandler
	engine    *gin.Engine
}

// NewGateway builds the gin engine around the worker's fetch policy.
// snapshots and clicks may be nil; the corresponding routes are then not
// registered.
func NewGateway(w *Worker, snapshots *snapshot.Manager, clicks *ClickHandler) *Gateway {
	gin.SetMode(gin.ReleaseMode)

	g := &Gateway{
		worker:    w,
		snapshots: snapshots,
		clicks:    clicks,
		engine:    gin.New(),
	}

	g.engine.Use(gin.Recovery())
	g.registerRoutes()
	g.engine.NoRoute(g.handleFetch)
	return g
}

// Handler exposes the gateway as an http.Handler.
func (g *Gateway) Handler() http.Handler {
	return g.engine
}

func (g *Gateway) handleFetch(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		g.passthrough(c)
		return
	}

	if g.isNavigation(c.Request) {
		g.serveNavigation(c)
		return
	}

	g.serveAsset(c)
}

// isNavigation treats enumerated shell routes and requests preferring HTML
// as full-page loads.
func (g *Gateway) isNavigation(r *http.Request) bool {
	if g.worker.isShellRoute(r.URL.Path) {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// serveNavigation is network-first: a reachable network always wins, and
// only a failed fetch falls back to the cached shell. Requests are fetched
// and cached by their full URL, query string included.
func (g *Gateway) serveNavigation(c *gin.Context) {
	target := c.Request.URL.RequestURI()

	status, header, body, err := g.worker.fetch(c.Request.Context(), target, c.Request.Header)
	if err == nil {
		if status == http.StatusOK {
			if putErr := g.worker.bucket.Put(target, status, header, body); putErr != nil {
				slog.Warn("failed to cache navigation response", "url", target, "error", putErr)
			}
		}
		writeResponse(c, status, header, body)
		return
	}

	slog.Debug("navigation fetch failed, falling back to cached shell", "url", target, "error", err)

	for _, candidate := range []string{target, "/"} {
		cached, ok, cacheErr := g.worker.bucket.Get(candidate)
		if cacheErr != nil {
			slog.Warn("cache read failed", "url", candidate, "error", cacheErr)
			continue
		}
		if ok {
			writeResponse(c, cached.Status, cached.Header, cached.Body)
			return
		}
	}

	c.String(http.StatusServiceUnavailable, "offline and no cached shell available")
}

// serveAsset is cache-first: a hit is served as stored, a miss goes to the
// network and a successful response is cloned into the cache for next time.
// A failed asset fetch propagates; the worker does not retry. The cache key
// is the full URL, so /page?a and /page?b are distinct entries.
func (g *Gateway) serveAsset(c *gin.Context) {
	target := c.Request.URL.RequestURI()

	cached, ok, err := g.worker.bucket.Get(target)
	if err != nil {
		slog.Warn("cache read failed", "url", target, "error", err)
	}
	if ok {
		writeResponse(c, cached.Status, cached.Header, cached.Body)
		return
	}

	status, header, body, err := g.worker.fetch(c.Request.Context(), target, c.Request.Header)
	if err != nil {
		c.String(http.StatusBadGateway, "asset fetch failed")
		return
	}

	if status == http.StatusOK {
		if putErr := g.worker.bucket.Put(target, status, header, body); putErr != nil {
			slog.Warn("failed to cache asset", "url", target, "error", putErr)
		}
	}
	writeResponse(c, status, header, body)
}

// passthrough forwards a non-GET request verbatim. Nothing is cached.
func (g *Gateway) passthrough(c *gin.Context) {
	target := *g.worker.origin
	target.Path = c.Request.URL.Path
	target.RawQuery = c.Request.URL.RawQuery

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target.String(), c.Request.Body)
	if err != nil {
		c.String(http.StatusBadGateway, "failed to build upstream request")
		return
	}
	copyHeader(req.Header, c.Request.Header)

	resp, err := g.worker.client.Do(req)
	if err != nil {
		c.String(http.StatusBadGateway, "upstream unreachable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	copyHeader(c.Writer.Header(), resp.Header)
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		slog.Debug("passthrough copy interrupted", "error", err)
	}
}

func writeResponse(c *gin.Context, status int, header http.Header, body []byte) {
	copyHeader(c.Writer.Header(), header)
	c.Status(status)
	_, _ = c.Writer.Write(body)
}
