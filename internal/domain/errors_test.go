package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"fetch", fmt.Errorf("%w: boom", ErrFetch), "fetch"},
		{"parse", fmt.Errorf("%w: bad xml", ErrParse), "parse"},
		{"date parse wins over parse", fmt.Errorf("%w: %w: item", ErrParse, ErrDateParse), "date_parse"},
		{"serialize", fmt.Errorf("outer: %w", ErrSerialize), "serialize"},
		{"write", fmt.Errorf("%w: disk full", ErrWrite), "write"},
		{"unknown", errors.New("something else"), "unknown"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Kind(c.err))
		})
	}
}
