package fetcher

import (
	"blogdigest/internal/domain"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPFetcher реализует интерфейс FeedFetcher для загрузки RSS-ленты по HTTP.
// Все ошибки оборачивают domain.ErrFetch.
type HTTPFetcher struct {
	client       *http.Client
	log          *slog.Logger
	userAgent    string
	maxBodyBytes int64
}

// Option настраивает HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent задает заголовок User-Agent запроса.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithMaxBodyBytes ограничивает размер тела ответа.
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) { f.maxBodyBytes = n }
}

// NewHTTPFetcher создает новый экземпляр HTTPFetcher с ограничением времени запроса timeout.
func NewHTTPFetcher(log *slog.Logger, timeout time.Duration, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:       &http.Client{Timeout: timeout},
		log:          log.With(slog.String("component", "fetcher")),
		userAgent:    "blogdigest",
		maxBodyBytes: 10 << 20,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch выполняет HTTP GET по указанному URL и возвращает тело ответа целиком.
// Ответ со статусом отличным от 200, сетевые ошибки, обрыв чтения тела и
// превышение лимита размера считаются ошибками загрузки.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := f.log.With(slog.String("url", url))
	log.Info("Fetching URL")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to create request for url %s: %w", domain.ErrFetch, url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")
	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("HTTP request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to fetch url %s: %w", domain.ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status code: %d for url %s", domain.ErrFetch, resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		log.Error("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to read body of %s: %w", domain.ErrFetch, url, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		log.Error("Response body too large", slog.Int64("limit_bytes", f.maxBodyBytes))
		return nil, fmt.Errorf("%w: response body of %s exceeds %d bytes", domain.ErrFetch, url, f.maxBodyBytes)
	}
	log.Info("Successfully fetched URL", slog.Int("bytes", len(body)))
	return body, nil
}
