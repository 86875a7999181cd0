package serializer

import (
	"blogdigest/internal/domain"
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"

	"github.com/gorilla/feeds"
	"github.com/mmcdole/gofeed"
)

// rssDocument - корень <rss version="2.0"> без дополнительных пространств имен.
type rssDocument struct {
	XMLName xml.Name       `xml:"rss"`
	Version string         `xml:"version,attr"`
	Channel *feeds.RssFeed `xml:"channel"`
}

// RSSSerializer строит и рендерит выходной документ RSS 2.0.
type RSSSerializer struct {
	log    *slog.Logger
	parser *gofeed.Parser
}

// NewRSSSerializer создает новый сериализатор RSS.
func NewRSSSerializer(log *slog.Logger) *RSSSerializer {
	return &RSSSerializer{
		log:    log.With(slog.String("component", "serializer")),
		parser: gofeed.NewParser(),
	}
}

// Serialize рендерит канал и посты в документ RSS 2.0 с отступами.
// Канал содержит title, link, description и затем item в порядке items;
// каждый item содержит title, link, description, pubDate. Дата публикации
// переносится без изменений. Готовый документ повторно разбирается, чтобы
// убедиться в его корректности. Ошибки оборачивают domain.ErrSerialize.
func (s *RSSSerializer) Serialize(channel domain.Channel, items []domain.Item) ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		Channel: &feeds.RssFeed{
			Title:       channel.Title,
			Link:        channel.Link,
			Description: channel.Description,
			Items:       make([]*feeds.RssItem, 0, len(items)),
		},
	}
	for _, item := range items {
		doc.Channel.Items = append(doc.Channel.Items, &feeds.RssItem{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			PubDate:     item.PubDate,
		})
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Error("Failed to marshal RSS document", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to marshal RSS document: %w", domain.ErrSerialize, err)
	}
	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	if err := s.verify(buf.Bytes(), len(items)); err != nil {
		s.log.Error("Rendered RSS document failed verification", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", domain.ErrSerialize, err)
	}
	s.log.Debug("RSS document rendered",
		slog.Int("items", len(items)),
		slog.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func (s *RSSSerializer) verify(data []byte, wantItems int) error {
	parsed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("rendered document is not a readable feed: %w", err)
	}
	if parsed.FeedType != "rss" {
		return fmt.Errorf("rendered document detected as %q, want rss", parsed.FeedType)
	}
	if len(parsed.Items) != wantItems {
		return fmt.Errorf("rendered document has %d items, want %d", len(parsed.Items), wantItems)
	}
	return nil
}
