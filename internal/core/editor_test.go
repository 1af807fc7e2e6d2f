//go:build unit

package core

import (
	"context"
	"errors"
	"testing"

	"bookstore-admin/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditor_ValidationBlocksNetwork(t *testing.T) {
	w := &fakeWriter[model.Category]{}
	rec := &Recorder{}
	ed := NewEditor[model.Category](w, nil, rec, nil)
	ed.OpenCreate()

	err := ed.Submit(context.Background())
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Zero(t, w.calls())
	assert.Equal(t, StateOpen, ed.State())
	assert.Equal(t, LevelError, rec.Last().Level)
	assert.Contains(t, rec.Last().Msg, "name")
}

func TestEditor_CreateClosesAndRefreshes(t *testing.T) {
	w := &fakeWriter[model.Category]{}
	rec := &Recorder{}
	refreshed := 0
	ed := NewEditor[model.Category](w, nil, rec, counter(&refreshed))

	ed.OpenCreate()
	assert.Equal(t, ModeCreate, ed.Mode())
	require.NoError(t, ed.Edit(func(c *model.Category) { c.Name = "Fiction" }))
	require.NoError(t, ed.Submit(context.Background()))

	require.Len(t, w.created, 1)
	assert.Equal(t, "Fiction", w.created[0].Name)
	assert.Equal(t, StateClosed, ed.State())
	assert.False(t, ed.Visible())
	assert.Equal(t, model.Category{}, ed.Draft())
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, Note{Level: LevelInfo, Msg: msgSaved}, rec.Last())
}

func TestEditor_EditUsesRecordID(t *testing.T) {
	w := &fakeWriter[model.Author]{}
	ed := NewEditor[model.Author](w, nil, nil, nil)
	ed.OpenEdit(model.Author{ID: "a7", Name: "Tô Hoài"})
	assert.Equal(t, ModeEdit, ed.Mode())
	require.NoError(t, ed.Submit(context.Background()))
	assert.Equal(t, "Tô Hoài", w.updated["a7"].Name)
}

func TestEditor_FailureStaysOpen(t *testing.T) {
	w := &fakeWriter[model.Category]{err: &model.HTTPError{Status: 409, Message: "Danh mục đã tồn tại"}}
	rec := &Recorder{}
	refreshed := 0
	ed := NewEditor[model.Category](w, nil, rec, counter(&refreshed))
	ed.OpenEdit(model.Category{ID: "c1", Name: "Fiction"})

	err := ed.Submit(context.Background())
	require.ErrorIs(t, err, model.ErrHTTP)
	assert.Equal(t, StateOpen, ed.State())
	assert.Equal(t, "Fiction", ed.Draft().Name)
	assert.ErrorIs(t, ed.Err(), model.ErrHTTP)
	assert.Equal(t, "Danh mục đã tồn tại", rec.Last().Msg)
	assert.Zero(t, refreshed)
}

func TestEditor_ExtraChecks(t *testing.T) {
	w := &fakeWriter[model.Book]{}
	noFree := func(b model.Book) error {
		if b.Price.IsZero() {
			return &model.ValidationError{Fields: map[string]string{"price": "must be set"}}
		}
		return nil
	}
	ed := NewEditor[model.Book](w, nil, nil, nil, noFree)
	ed.OpenEdit(model.Book{ID: "b1", Title: "T", CategoryID: "c", AuthorID: "a", PublisherID: "p"})
	require.ErrorIs(t, ed.Submit(context.Background()), model.ErrValidation)
	assert.Zero(t, w.calls())
}

func TestEditor_Defaults(t *testing.T) {
	ed := NewEditor[model.Book](&fakeWriter[model.Book]{}, func() model.Book { return model.Book{Quantity: 1} }, nil, nil)
	ed.OpenCreate()
	assert.Equal(t, 1, ed.Draft().Quantity)
}

func TestEditor_ClosedRejectsEditAndSubmit(t *testing.T) {
	ed := NewEditor[model.Category](&fakeWriter[model.Category]{}, nil, nil, nil)
	assert.True(t, errors.Is(ed.Edit(func(*model.Category) {}), model.ErrNotOpen))
	assert.ErrorIs(t, ed.Submit(context.Background()), model.ErrNotOpen)

	ed.OpenCreate()
	ed.Cancel()
	assert.Equal(t, StateClosed, ed.State())
}
