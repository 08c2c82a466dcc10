package feed_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/domain"
	"github.com/specwatch/specwatch/infrastructure/feed"
)

func writeArtifact(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "widgets-plugin-13.2.0.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("artifact-bytes"), 0o600))
	return path
}

func TestPush(t *testing.T) {
	t.Parallel()

	t.Run("should PUT the artifact bytes with the API key header", func(t *testing.T) {
		t.Parallel()

		// given
		var gotMethod, gotKey string
		var gotBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotKey = r.Header.Get("X-API-Key")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		}))
		t.Cleanup(server.Close)
		client := feed.New(server.URL, "feed-key")

		// when
		err := client.Push(context.Background(), writeArtifact(t))

		// then
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "feed-key", gotKey)
		assert.Equal(t, "artifact-bytes", string(gotBody))
	})

	t.Run("should treat a conflict as already published", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		t.Cleanup(server.Close)
		client := feed.New(server.URL, "feed-key")

		// when
		err := client.Push(context.Background(), writeArtifact(t))

		// then
		assert.NoError(t, err)
	})

	t.Run("should fail with auth error on a rejected key", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(server.Close)
		client := feed.New(server.URL, "bad-key")

		// when
		err := client.Push(context.Background(), writeArtifact(t))

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuth)
	})

	t.Run("should fail when the artifact file does not exist", func(t *testing.T) {
		t.Parallel()

		// given
		client := feed.New("http://127.0.0.1:1", "key")

		// when
		err := client.Push(context.Background(), filepath.Join(t.TempDir(), "missing.tar.gz"))

		// then
		assert.Error(t, err)
	})
}
