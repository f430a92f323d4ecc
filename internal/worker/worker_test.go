package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShellUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>shell:" + r.URL.Path + "</html>"))
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte("console.log('hively')"))
	})
	mux.HandleFunc("/broken.css", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestWorker(t *testing.T, origin, version string, precache []string) (*Worker, *Cache) {
	t.Helper()

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	w, err := New(cache, Config{
		Origin:   origin,
		Version:  version,
		Shell:    []string{"/", "/expenses", "/reminders", "/settings"},
		Precache: precache,
	})
	require.NoError(t, err)
	return w, cache
}

func TestWorkerInstall(t *testing.T) {
	upstream := newShellUpstream(t)

	t.Run("pre-caches shell and assets", func(t *testing.T) {
		w, _ := newTestWorker(t, upstream.URL, "v2", []string{"/", "/app.js"})
		require.NoError(t, w.Install(context.Background()))

		urls, err := w.Bucket().URLs()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"/", "/app.js"}, urls)
	})

	t.Run("skips failed assets without aborting", func(t *testing.T) {
		w, _ := newTestWorker(t, upstream.URL, "v2", []string{"/", "/broken.css", "/app.js"})
		require.NoError(t, w.Install(context.Background()))

		urls, err := w.Bucket().URLs()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"/", "/app.js"}, urls)
	})

	t.Run("unreachable origin still installs", func(t *testing.T) {
		w, _ := newTestWorker(t, "http://127.0.0.1:1", "v2", []string{"/"})
		require.NoError(t, w.Install(context.Background()))

		urls, err := w.Bucket().URLs()
		require.NoError(t, err)
		assert.Empty(t, urls)
	})
}

func TestWorkerActivateEvictsStaleVersions(t *testing.T) {
	upstream := newShellUpstream(t)
	w, cache := newTestWorker(t, upstream.URL, "v2", nil)

	// Leftovers from a previous version plus a foreign directory.
	old, err := cache.Open(BucketPrefix + "v1")
	require.NoError(t, err)
	require.NoError(t, old.Put("/", http.StatusOK, nil, []byte("stale shell")))
	_, err = cache.Open("unrelated")
	require.NoError(t, err)

	require.NoError(t, w.Install(context.Background()))
	require.NoError(t, w.Activate(context.Background()))

	names, err := cache.Buckets()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{BucketPrefix + "v2", "unrelated"}, names)
}
