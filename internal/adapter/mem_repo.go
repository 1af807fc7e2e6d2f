package adapter

import (
	"context"
	"errors"
	"strings"
	"sync"

	"bookstore-admin/internal/core/model"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

// MemRepo is an in-memory store for one entity type. Reads return copies
// in insertion order.
type MemRepo[T model.Record] struct {
	mu    sync.RWMutex
	byID  map[string]T // id -> record
	order []string     // insertion order of ids

	newID  func() string
	setID  func(*T, string)
	fields func(T) []string // searchable text of a record
}

func NewMemRepo[T model.Record](newID func() string, setID func(*T, string), fields func(T) []string) *MemRepo[T] {
	return &MemRepo[T]{
		byID:   make(map[string]T),
		newID:  newID,
		setID:  setID,
		fields: fields,
	}
}

// Create assigns an id when the record has none.
func (r *MemRepo[T]) Create(_ context.Context, rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rec.RecordID()
	if id == "" {
		id = r.newID()
		r.setID(&rec, id)
	}
	if _, ok := r.byID[id]; ok {
		var zero T
		return zero, errConflict
	}
	r.byID[id] = rec
	r.order = append(r.order, id)
	return rec, nil
}

func (r *MemRepo[T]) Get(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		var zero T
		return zero, errNotFound
	}
	return rec, nil
}

func (r *MemRepo[T]) List(_ context.Context) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Search returns records whose searchable fields contain keyword,
// case-insensitively.
func (r *MemRepo[T]) Search(ctx context.Context, keyword string) []T {
	all := r.List(ctx)
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return all
	}
	out := all[:0]
	for _, rec := range all {
		if matchesKeyword(r.fields(rec), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// Update replaces the record stored under id; the id itself never changes.
func (r *MemRepo[T]) Update(_ context.Context, id string, rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		var zero T
		return zero, errNotFound
	}
	r.setID(&rec, id)
	r.byID[id] = rec
	return rec, nil
}

func (r *MemRepo[T]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return errNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func matchesKeyword(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
