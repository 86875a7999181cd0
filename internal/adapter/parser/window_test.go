package parser

import (
	"blogdigest/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func item(title string, published time.Time) domain.Item {
	return domain.Item{
		Title:     title,
		PubDate:   published.Format(time.RFC1123),
		Published: published,
	}
}

func titles(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestFilterRecent_Boundary(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	items := []domain.Item{
		item("at cutoff", now.Add(-24*time.Hour)),
		item("just outside", now.Add(-24*time.Hour-time.Second)),
	}

	recent := FilterRecent(items, now)

	assert.Equal(t, []string{"at cutoff"}, titles(recent))
}

func TestFilterRecent_TwoHoursVsThirtyHours(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	items := []domain.Item{
		item("A", now.Add(-2*time.Hour)),
		item("B", now.Add(-30*time.Hour)),
	}

	recent := FilterRecent(items, now)

	assert.Equal(t, []string{"A"}, titles(recent))
}

func TestFilterRecent_PreservesOrderAndDuplicates(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	items := []domain.Item{
		item("old", now.Add(-48*time.Hour)),
		item("newest", now.Add(-time.Minute)),
		item("older", now.Add(-20*time.Hour)),
		item("newest", now.Add(-time.Minute)),
		item("future", now.Add(time.Hour)),
	}

	recent := FilterRecent(items, now)

	assert.Equal(t, []string{"newest", "older", "newest", "future"}, titles(recent))
}

func TestFilterRecent_ZoneIndependent(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)
	items := []domain.Item{item("tokyo", now.Add(-23*time.Hour).In(tokyo))}

	assert.Len(t, FilterRecent(items, now), 1)
}

func TestFilterRecent_Empty(t *testing.T) {
	assert.Empty(t, FilterRecent(nil, time.Now()))
}
