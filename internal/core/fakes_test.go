//go:build unit

package core

import (
	"context"
	"sync"

	"bookstore-admin/internal/core/model"
)

// fakeSource serves a fixed collection; err, when set, fails every call.
type fakeSource[T model.Record] struct {
	mu       sync.Mutex
	items    []T
	err      error
	searched []string
	lists    int
}

func (f *fakeSource[T]) List(context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	return append([]T(nil), f.items...), nil
}

func (f *fakeSource[T]) Search(_ context.Context, keyword string) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, keyword)
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeSource[T]) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeWriter records what it was asked to write.
type fakeWriter[T model.Record] struct {
	created []T
	updated map[string]T
	err     error
}

func (f *fakeWriter[T]) Create(_ context.Context, rec T) (model.WriteResult, error) {
	if f.err != nil {
		return model.WriteResult{}, f.err
	}
	f.created = append(f.created, rec)
	return model.WriteResult{ID: "new"}, nil
}

func (f *fakeWriter[T]) Update(_ context.Context, id string, rec T) (model.WriteResult, error) {
	if f.err != nil {
		return model.WriteResult{}, f.err
	}
	if f.updated == nil {
		f.updated = map[string]T{}
	}
	f.updated[id] = rec
	return model.WriteResult{Message: "updated"}, nil
}

func (f *fakeWriter[T]) calls() int { return len(f.created) + len(f.updated) }

type fakeDeleter struct {
	deleted []string
	err     error
}

func (f *fakeDeleter) Delete(_ context.Context, id string) (model.WriteResult, error) {
	f.deleted = append(f.deleted, id)
	if f.err != nil {
		return model.WriteResult{}, f.err
	}
	return model.WriteResult{}, nil
}

func counter(n *int) func(context.Context) error {
	return func(context.Context) error {
		*n++
		return nil
	}
}
