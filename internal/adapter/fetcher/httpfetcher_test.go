package fetcher

import (
	"blogdigest/internal/domain"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	var gotUA string
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<rss></rss>"))
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(testLogger(), 5*time.Second, WithUserAgent("blogdigest-test/1.0"))

	data, err := fetcher.Fetch(context.Background(), testServer.URL)

	require.NoError(t, err)
	assert.Equal(t, "<rss></rss>", string(data))
	assert.Equal(t, "blogdigest-test/1.0", gotUA)
}

func TestHTTPFetcher_Fetch_NotFound(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(testLogger(), 5*time.Second)

	data, err := fetcher.Fetch(context.Background(), testServer.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Contains(t, err.Error(), "unexpected status code: 404")
	assert.Nil(t, data)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	fetcher := NewHTTPFetcher(testLogger(), 5*time.Second)

	data, err := fetcher.Fetch(context.Background(), "invalid://url")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Nil(t, data)
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("slow response"))
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(testLogger(), 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data, err := fetcher.Fetch(ctx, testServer.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, data)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer testServer.Close()
	defer close(release)
	fetcher := NewHTTPFetcher(testLogger(), 50*time.Millisecond)

	data, err := fetcher.Fetch(context.Background(), testServer.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Nil(t, data)
}

func TestHTTPFetcher_BodyTooLarge(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(testLogger(), 5*time.Second, WithMaxBodyBytes(16))

	data, err := fetcher.Fetch(context.Background(), testServer.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
	assert.Nil(t, data)
}

func TestHTTPFetcher_BodyAtLimit(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer testServer.Close()
	fetcher := NewHTTPFetcher(testLogger(), 5*time.Second, WithMaxBodyBytes(16))

	data, err := fetcher.Fetch(context.Background(), testServer.URL)

	require.NoError(t, err)
	assert.Len(t, data, 16)
}
