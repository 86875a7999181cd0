package domain

import "time"

// Item представляет отдельный пост исходной RSS-ленты.
// PubDate хранит дату публикации в том виде, в каком она пришла из источника,
// Published - момент времени, разобранный из PubDate.
type Item struct {
	Title       string
	Link        string
	Description string
	PubDate     string
	Published   time.Time
}

// Feed представляет разобранную исходную RSS-ленту с метаданными и списком постов.
type Feed struct {
	Title       string
	Link        string
	Description string
	Items       []Item
}

// Channel содержит метаданные канала выходной ленты.
type Channel struct {
	Title       string
	Link        string
	Description string
}
