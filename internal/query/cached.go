package query

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes successful answers by normalized question. Slides in one
// deck often ask the same data question; the warehouse round-trip is the
// expensive path.
type Cached struct {
	inner Client
	cache *lru.Cache[string, Rows]
}

func NewCached(inner Client, size int) (*Cached, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, Rows](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: c}, nil
}

func (c *Cached) Query(ctx context.Context, question string) (Rows, error) {
	key := strings.ToLower(strings.TrimSpace(question))
	if rows, ok := c.cache.Get(key); ok {
		return rows, nil
	}
	rows, err := c.inner.Query(ctx, question)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, rows)
	return rows, nil
}
