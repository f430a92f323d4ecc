package worker

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketPutGet(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	bucket, err := cache.Open(BucketPrefix + "v1")
	require.NoError(t, err)

	t.Run("roundtrip", func(t *testing.T) {
		header := http.Header{"Content-Type": []string{"text/html"}}
		require.NoError(t, bucket.Put("/index.html", http.StatusOK, header, []byte("<html>shell</html>")))

		got, ok, err := bucket.Get("/index.html")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, got.Status)
		assert.Equal(t, "text/html", got.Header.Get("Content-Type"))
		assert.Equal(t, []byte("<html>shell</html>"), got.Body)
	})

	t.Run("stored body is an independent clone", func(t *testing.T) {
		body := []byte("original")
		require.NoError(t, bucket.Put("/app.js", http.StatusOK, nil, body))

		first, ok, err := bucket.Get("/app.js")
		require.NoError(t, err)
		require.True(t, ok)

		// Mutating what one reader got back must not leak into the store.
		first.Body[0] = 'X'

		second, ok, err := bucket.Get("/app.js")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("original"), second.Body)
	})

	t.Run("miss", func(t *testing.T) {
		got, ok, err := bucket.Get("/missing.css")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("overwrite replaces entry", func(t *testing.T) {
		require.NoError(t, bucket.Put("/logo.svg", http.StatusOK, nil, []byte("v1")))
		require.NoError(t, bucket.Put("/logo.svg", http.StatusOK, nil, []byte("v2")))

		got, ok, err := bucket.Get("/logo.svg")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("v2"), got.Body)
	})
}

func TestCacheBucketLifecycle(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{BucketPrefix + "v1", BucketPrefix + "v2", "unrelated"} {
		_, err := cache.Open(name)
		require.NoError(t, err)
	}

	names, err := cache.Buckets()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{BucketPrefix + "v1", BucketPrefix + "v2", "unrelated"}, names)

	require.NoError(t, cache.Delete(BucketPrefix+"v1"))

	names, err = cache.Buckets()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{BucketPrefix + "v2", "unrelated"}, names)

	// Deleting a missing bucket is not an error.
	require.NoError(t, cache.Delete(BucketPrefix+"v1"))
}
