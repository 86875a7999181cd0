package usecase

import (
	"blogdigest/internal/domain"
	"context"
	"io"
)

// FeedFetcher определяет интерфейс для загрузки исходной RSS-ленты.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser определяет интерфейс для парсинга RSS-данных в доменную модель.
type FeedParser interface {
	Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error)
}

// FeedSerializer строит выходной документ из метаданных канала и постов.
type FeedSerializer interface {
	Serialize(channel domain.Channel, items []domain.Item) ([]byte, error)
}

// FeedWriter сохраняет выходной документ по указанному пути.
type FeedWriter interface {
	Write(path string, data []byte) error
}
