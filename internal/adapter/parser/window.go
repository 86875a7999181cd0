package parser

import (
	"blogdigest/internal/domain"
	"time"
)

// Window - длина окна включения постов, отсчитываемого назад от текущего момента.
const Window = 24 * time.Hour

// FilterRecent возвращает посты, опубликованные не раньше now - Window,
// в исходном порядке. Пост ровно на границе окна включается.
func FilterRecent(items []domain.Item, now time.Time) []domain.Item {
	cutoff := now.Add(-Window)
	recent := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if !item.Published.Before(cutoff) {
			recent = append(recent, item)
		}
	}
	return recent
}
