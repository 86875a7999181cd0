package parser

import (
	"blogdigest/internal/domain"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Channel channelXML `xml:"channel"`
}
type channelXML struct {
	Items    []itemXML    `xml:"item"`
	Children []elementXML `xml:",any"`
}
type itemXML struct {
	Children []elementXML `xml:",any"`
}

// elementXML - дочерний элемент канала или поста; учитывается только его
// собственный текст.
type elementXML struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// childText возвращает текст первого дочернего элемента local без пространства
// имен. Элементы вроде media:title или atom:link пропускаются.
func childText(children []elementXML, local string) string {
	for _, c := range children {
		if c.XMLName.Space == "" && c.XMLName.Local == local {
			return c.Text
		}
	}
	return ""
}

// pubDateLayouts - варианты RFC 1123 с числовым смещением, с двузначным или
// однозначным днем месяца.
var pubDateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// pubDateZoneLayouts - те же варианты без зоны; зона разбирается отдельно
// по rfc822Zones.
var pubDateZoneLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04:05",
}

// rfc822Zones - смещения в часах для буквенных зон RFC 822. Прочие
// сокращения не принимаются.
var rfc822Zones = map[string]int{
	"UT":  0,
	"UTC": 0,
	"GMT": 0,
	"Z":   0,
	"EST": -5,
	"EDT": -4,
	"CST": -6,
	"CDT": -5,
	"MST": -7,
	"MDT": -6,
	"PST": -8,
	"PDT": -7,
}

// XMLParser разбирает документ RSS 2.0 в domain.Feed.
type XMLParser struct {
	log              *slog.Logger
	skipInvalidDates bool
}

// Option настраивает XMLParser.
type Option func(*XMLParser)

// WithSkipInvalidDates включает пропуск постов с нераспознанной датой публикации
// вместо прерывания разбора.
func WithSkipInvalidDates(skip bool) Option {
	return func(p *XMLParser) { p.skipInvalidDates = skip }
}

// NewXMLParser создает новый парсер RSS.
func NewXMLParser(log *slog.Logger, opts ...Option) *XMLParser {
	p := &XMLParser{
		log: log.With(slog.String("component", "parser")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse реализует метод интерфейса FeedParser.
// Посты возвращаются в порядке документа. Документ, не являющийся корректным XML
// с корнем <rss>, дает ошибку domain.ErrParse. Нераспознанная дата публикации
// дает domain.ErrDateParse, если не включен пропуск таких постов.
func (p *XMLParser) Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rss rssXML
	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&rss); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("no root element found")
		}
		p.log.Error("Error decoding XML", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to decode XML: %w", domain.ErrParse, err)
	}
	if err := expectEnd(decoder); err != nil {
		p.log.Error("Unexpected content after root element", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to decode XML: %w", domain.ErrParse, err)
	}
	feed := domain.Feed{
		Title:       childText(rss.Channel.Children, "title"),
		Link:        childText(rss.Channel.Children, "link"),
		Description: childText(rss.Channel.Children, "description"),
		Items:       make([]domain.Item, 0, len(rss.Channel.Items)),
	}
	for i, itemDTO := range rss.Channel.Items {
		item := domain.Item{
			Title:       childText(itemDTO.Children, "title"),
			Link:        childText(itemDTO.Children, "link"),
			Description: childText(itemDTO.Children, "description"),
			PubDate:     childText(itemDTO.Children, "pubDate"),
		}
		published, err := parsePubDate(item.PubDate)
		if err != nil {
			if p.skipInvalidDates {
				p.log.Warn(
					"could not parse item pubDate, skipping item",
					slog.String("pubDate", item.PubDate),
					slog.String("item_title", item.Title),
					slog.Any("error", err),
				)
				continue
			}
			p.log.Error(
				"could not parse item pubDate",
				slog.Int("item_index", i),
				slog.String("pubDate", item.PubDate),
				slog.String("item_title", item.Title),
			)
			return nil, fmt.Errorf("item %d (%q): %w", i, item.Title, err)
		}
		item.Published = published
		feed.Items = append(feed.Items, item)
	}
	p.log.Debug("Feed parsed",
		slog.Int("items_found", len(rss.Channel.Items)),
		slog.Int("items_parsed", len(feed.Items)),
	)
	return &feed, nil
}

// expectEnd проверяет, что после корневого элемента остались только пробелы,
// комментарии и инструкции обработки.
func expectEnd(decoder *xml.Decoder) error {
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text after root element")
			}
		}
	}
}

// parsePubDate разбирает дату публикации в формате RFC 1123. Зона задается
// числовым смещением или одним из сокращений RFC 822.
func parsePubDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		zone := s[i+1:]
		if hours, ok := rfc822Zones[zone]; ok {
			loc := time.FixedZone(zone, hours*60*60)
			for _, layout := range pubDateZoneLayouts {
				if t, err := time.ParseInLocation(layout, s[:i], loc); err == nil {
					return t, nil
				}
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an RFC 1123 date-time", domain.ErrDateParse, dateStr)
}
