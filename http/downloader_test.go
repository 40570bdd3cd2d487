package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/biblefetch"
	bfhttp "github.com/fwojciec/biblefetch/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	t.Run("returns binary body from server", func(t *testing.T) {
		t.Parallel()

		audio := []byte{0x49, 0x44, 0x33, 0x00, 0xff}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write(audio)
		}))
		defer server.Close()

		body, err := bfhttp.NewDownloader().Download(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, audio, body)
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		got := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- r.Header.Get("User-Agent")
		}))
		defer server.Close()

		_, err := bfhttp.NewDownloader(bfhttp.WithUserAgent("test-agent")).Download(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "test-agent", <-got)
	})

	t.Run("returns fetch error naming status on 404", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := bfhttp.NewDownloader().Download(context.Background(), server.URL)

		require.Error(t, err)
		assert.Equal(t, biblefetch.EFETCH, biblefetch.ErrorCode(err))
		assert.Equal(t, "failed to download audio, HTTP status: 404", biblefetch.ErrorMessage(err))
	})

	t.Run("marks throttling and server errors unavailable", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			_, err := bfhttp.NewDownloader().Download(context.Background(), server.URL)
			server.Close()

			require.Error(t, err)
			assert.Equal(t, biblefetch.EUNAVAILABLE, biblefetch.ErrorCode(err), "status %d", status)
		}
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()

		_, err := bfhttp.NewDownloader(bfhttp.WithTimeout(10*time.Millisecond)).Download(context.Background(), server.URL)

		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("audio"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := bfhttp.NewDownloader().Download(ctx, server.URL)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		t.Parallel()

		_, err := bfhttp.NewDownloader().Download(context.Background(), "://bad")

		require.Error(t, err)
		assert.Equal(t, biblefetch.EINVALID, biblefetch.ErrorCode(err))
	})
}
