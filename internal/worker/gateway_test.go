package worker

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installedGateway(t *testing.T, upstream *httptest.Server, precache []string) *Gateway {
	t.Helper()

	w, _ := newTestWorker(t, upstream.URL, "v2", precache)
	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))
	return NewGateway(w, nil, nil)
}

func doGet(t *testing.T, g *Gateway, path, accept string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGatewayNavigation(t *testing.T) {
	t.Run("network first while online", func(t *testing.T) {
		upstream := newShellUpstream(t)
		g := installedGateway(t, upstream, []string{"/"})

		rec := doGet(t, g, "/expenses", "text/html")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "shell:/expenses")
	})

	t.Run("offline navigation falls back to cached shell", func(t *testing.T) {
		upstream := newShellUpstream(t)
		g := installedGateway(t, upstream, []string{"/"})
		upstream.Close()

		rec := doGet(t, g, "/expenses", "text/html")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "shell:/")
	})

	t.Run("offline with empty cache reports unavailable", func(t *testing.T) {
		upstream := newShellUpstream(t)
		g := installedGateway(t, upstream, nil)
		upstream.Close()

		rec := doGet(t, g, "/expenses", "text/html")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("successful navigation refreshes the cached copy", func(t *testing.T) {
		upstream := newShellUpstream(t)
		w, _ := newTestWorker(t, upstream.URL, "v2", nil)
		require.NoError(t, w.Install(context.Background()))
		g := NewGateway(w, nil, nil)

		doGet(t, g, "/reminders", "text/html")

		cached, ok, err := w.Bucket().Get("/reminders")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, string(cached.Body), "shell:/reminders")
	})
}

func TestGatewayAssets(t *testing.T) {
	t.Run("cache first serves without touching the network", func(t *testing.T) {
		var hits atomic.Int64
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("from network"))
		}))
		t.Cleanup(upstream.Close)

		w, _ := newTestWorker(t, upstream.URL, "v2", nil)
		require.NoError(t, w.Install(context.Background()))
		require.NoError(t, w.Bucket().Put("/app.js", http.StatusOK, nil, []byte("from cache")))
		g := NewGateway(w, nil, nil)

		rec := doGet(t, g, "/app.js", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "from cache", rec.Body.String())
		assert.Zero(t, hits.Load())
	})

	t.Run("miss fetches and populates the cache", func(t *testing.T) {
		upstream := newShellUpstream(t)
		w, _ := newTestWorker(t, upstream.URL, "v2", nil)
		require.NoError(t, w.Install(context.Background()))
		g := NewGateway(w, nil, nil)

		rec := doGet(t, g, "/app.js", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		cached, ok, err := w.Bucket().Get("/app.js")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "console.log('hively')", string(cached.Body))
	})

	t.Run("query string reaches upstream and keys the cache", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("page=" + r.URL.Query().Get("page")))
		}))
		t.Cleanup(upstream.Close)

		w, _ := newTestWorker(t, upstream.URL, "v2", nil)
		require.NoError(t, w.Install(context.Background()))
		g := NewGateway(w, nil, nil)

		first := doGet(t, g, "/expenses.json?page=1", "")
		assert.Equal(t, "page=1", first.Body.String())
		second := doGet(t, g, "/expenses.json?page=2", "")
		assert.Equal(t, "page=2", second.Body.String())

		// Each query variant is its own cache entry and survives offline.
		upstream.Close()
		assert.Equal(t, "page=1", doGet(t, g, "/expenses.json?page=1", "").Body.String())
		assert.Equal(t, "page=2", doGet(t, g, "/expenses.json?page=2", "").Body.String())

		cached, ok, err := w.Bucket().Get("/expenses.json?page=1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "page=1", string(cached.Body))
	})

	t.Run("offline miss fails without crashing", func(t *testing.T) {
		upstream := newShellUpstream(t)
		g := installedGateway(t, upstream, nil)
		upstream.Close()

		rec := doGet(t, g, "/app.js", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGatewayPassthrough(t *testing.T) {
	var gotMethod, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotMethod = r.Method
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	t.Cleanup(upstream.Close)

	w, _ := newTestWorker(t, upstream.URL, "v2", nil)
	require.NoError(t, w.Install(context.Background()))
	g := NewGateway(w, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"title":"Coffee"}`))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `{"title":"Coffee"}`, gotBody)

	// Writes never end up in the cache.
	cached, ok, err := w.Bucket().Get("/api/expenses")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, cached)
}
