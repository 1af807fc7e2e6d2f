package core

import (
	"context"
	"log/slog"
	"sync"

	"bookstore-admin/internal/core/model"
)

const msgLoadFailed = "could not load data"

// ListController owns the fetched collection, search keyword and sort state
// of one entity screen. Every state change re-fetches; only the response of
// the most recently started fetch is committed.
type ListController[T model.Record] struct {
	src    Source[T]
	notify Notifier
	log    *slog.Logger

	mu      sync.Mutex
	items   []T
	keyword string
	sort    SortState
	gen     uint64
}

func NewListController[T model.Record](src Source[T], notify Notifier, logger *slog.Logger) *ListController[T] {
	return &ListController[T]{
		src:    src,
		notify: orDiscard(notify),
		log:    orDefault(logger),
		sort:   SortState{Direction: Asc},
	}
}

// Items returns a copy of the current collection.
func (c *ListController[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *ListController[T]) Keyword() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyword
}

func (c *ListController[T]) Sort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// Find returns the item with the given id from the current collection.
func (c *ListController[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *ListController[T]) SetSearchKeyword(ctx context.Context, s string) error {
	c.mu.Lock()
	c.keyword = s
	c.mu.Unlock()
	return c.Refresh(ctx)
}

func (c *ListController[T]) SetSort(ctx context.Context, key string) error {
	c.mu.Lock()
	c.sort = c.sort.Toggle(key)
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh fetches, sorts and commits. On failure the operator is notified
// and the previous items stay in place. A response overtaken by a newer
// Refresh is dropped, failure included.
func (c *ListController[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	keyword := c.keyword
	c.mu.Unlock()

	var (
		items []T
		err   error
	)
	if keyword == "" {
		items, err = c.src.List(ctx)
	} else {
		items, err = c.src.Search(ctx, keyword)
	}

	c.mu.Lock()
	if gen != c.gen {
		latest := c.gen
		c.mu.Unlock()
		c.log.Debug("discarding stale list response", "generation", gen, "latest", latest, "err", err)
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.notify.Notify(LevelError, model.UserMessage(err, msgLoadFailed))
		return err
	}
	defer c.mu.Unlock()
	// sort with the state current at commit time so a SetSort racing with
	// this fetch is still honored
	sortRecords(items, c.sort)
	c.items = items
	return nil
}
