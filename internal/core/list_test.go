//go:build unit

package core

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"bookstore-admin/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_RefreshSortsWithCurrentState(t *testing.T) {
	src := &fakeSource[model.Category]{items: []model.Category{{ID: "c1", Name: "b"}, {ID: "c2", Name: "a"}}}
	lc := NewListController[model.Category](src, nil, nil)
	ctx := context.Background()

	require.NoError(t, lc.Refresh(ctx))
	assert.Equal(t, "c1", lc.Items()[0].ID, "server order without a sort key")

	require.NoError(t, lc.SetSort(ctx, "name"))
	assert.Equal(t, SortState{Key: "name", Direction: Asc}, lc.Sort())
	assert.Equal(t, "c2", lc.Items()[0].ID)

	require.NoError(t, lc.SetSort(ctx, "name"))
	assert.Equal(t, Desc, lc.Sort().Direction)
	assert.Equal(t, "c1", lc.Items()[0].ID)
}

func TestList_KeywordSwitchesToSearch(t *testing.T) {
	src := &fakeSource[model.Category]{items: []model.Category{{ID: "c1", Name: "Fiction"}}}
	lc := NewListController[model.Category](src, nil, nil)
	ctx := context.Background()

	require.NoError(t, lc.SetSearchKeyword(ctx, "Harry"))
	assert.Equal(t, []string{"Harry"}, src.searched)
	assert.Empty(t, lc.Items())

	require.NoError(t, lc.SetSearchKeyword(ctx, ""))
	assert.Len(t, lc.Items(), 1)
	assert.Equal(t, 2, src.lists+len(src.searched))
}

func TestList_FailureKeepsItemsAndNotifies(t *testing.T) {
	src := &fakeSource[model.Author]{items: []model.Author{{ID: "a1", Name: "Nam Cao"}}}
	rec := &Recorder{}
	lc := NewListController[model.Author](src, rec, nil)
	ctx := context.Background()
	require.NoError(t, lc.Refresh(ctx))

	src.setErr(&model.HTTPError{Status: 500, Message: "Lỗi máy chủ"})
	err := lc.Refresh(ctx)
	require.ErrorIs(t, err, model.ErrHTTP)
	assert.Len(t, lc.Items(), 1)
	assert.Equal(t, Note{Level: LevelError, Msg: "Lỗi máy chủ"}, rec.Last())

	src.setErr(&model.NetworkError{Method: "GET", URL: "x", Err: errors.New("refused")})
	require.Error(t, lc.Refresh(ctx))
	assert.Equal(t, msgLoadFailed, rec.Last().Msg)
}

// gatedSource blocks the first List until release is closed.
type gatedSource struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	calls   int
	// firstErr fails the blocked first call.
	firstErr error
}

func (g *gatedSource) List(context.Context) ([]model.Category, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	if n == 1 {
		g.once.Do(func() { close(g.entered) })
		<-g.release
		if g.firstErr != nil {
			return nil, g.firstErr
		}
		return []model.Category{{ID: "old", Name: "old"}}, nil
	}
	return []model.Category{{ID: "new", Name: "new"}}, nil
}

func (g *gatedSource) Search(ctx context.Context, _ string) ([]model.Category, error) {
	return g.List(ctx)
}

func TestList_StaleResponseDiscarded(t *testing.T) {
	src := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	lc := NewListController[model.Category](src, nil, nil)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- lc.Refresh(ctx) }()
	<-src.entered

	require.NoError(t, lc.Refresh(ctx))
	close(src.release)
	require.NoError(t, <-done)

	items := lc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)
}

func TestList_StaleFailureIsSilent(t *testing.T) {
	src := &gatedSource{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		firstErr: &model.HTTPError{Status: http.StatusBadGateway, Message: "upstream down"},
	}
	rec := &Recorder{}
	lc := NewListController[model.Category](src, rec, nil)
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- lc.Refresh(ctx) }()
	<-src.entered

	require.NoError(t, lc.Refresh(ctx))
	close(src.release)
	require.NoError(t, <-done)

	assert.Empty(t, rec.Notes())
	require.Len(t, lc.Items(), 1)
	assert.Equal(t, "new", lc.Items()[0].ID)
}

func TestList_Find(t *testing.T) {
	src := &fakeSource[model.Category]{items: []model.Category{{ID: "c1", Name: "Fiction"}}}
	lc := NewListController[model.Category](src, nil, nil)
	require.NoError(t, lc.Refresh(context.Background()))

	got, ok := lc.Find("c1")
	require.True(t, ok)
	assert.Equal(t, "Fiction", got.Name)
	_, ok = lc.Find("nope")
	assert.False(t, ok)
}
