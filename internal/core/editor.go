package core

import (
	"context"
	"fmt"
	"sync"

	"bookstore-admin/internal/core/model"
)

const (
	msgSaved      = "saved"
	msgSaveFailed = "save failed"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// State is shared by the modal flows: Closed -> Open -> Submitting -> Closed,
// or back to Open when the submit fails.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	}
	return "closed"
}

// Editor is the add/edit modal for one entity type.
type Editor[T model.Record] struct {
	w        Writer[T]
	defaults func() T
	checks   []func(T) error
	notify   Notifier
	onSaved  func(context.Context) error

	mu    sync.Mutex
	draft T
	mode  Mode
	state State
	err   error
}

// NewEditor builds an editor. onSaved runs after a successful submit,
// normally the list controller's Refresh. checks run after the tag-based
// validation.
func NewEditor[T model.Record](w Writer[T], defaults func() T, notify Notifier, onSaved func(context.Context) error, checks ...func(T) error) *Editor[T] {
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}
	return &Editor[T]{
		w:        w,
		defaults: defaults,
		checks:   checks,
		notify:   orDiscard(notify),
		onSaved:  onSaved,
	}
}

func (e *Editor[T]) OpenCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = e.defaults()
	e.mode = ModeCreate
	e.state = StateOpen
	e.err = nil
}

func (e *Editor[T]) OpenEdit(rec T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = rec
	e.mode = ModeEdit
	e.state = StateOpen
	e.err = nil
}

// Edit mutates the draft of an open editor.
func (e *Editor[T]) Edit(fn func(*T)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateOpen {
		return model.ErrNotOpen
	}
	fn(&e.draft)
	return nil
}

func (e *Editor[T]) Draft() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Editor[T]) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor[T]) Visible() bool { return e.State() != StateClosed }

// Err is the error of the last failed submit, cleared on open.
func (e *Editor[T]) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Editor[T]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	e.draft = zero
	e.state = StateClosed
	e.err = nil
}

// Submit validates locally, then creates or updates. A validation failure
// never reaches the network; any failure keeps the editor open.
func (e *Editor[T]) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateOpen {
		e.mu.Unlock()
		return model.ErrNotOpen
	}
	draft, mode := e.draft, e.mode
	if err := e.validate(draft); err != nil {
		e.err = err
		e.mu.Unlock()
		e.notify.Notify(LevelError, model.UserMessage(err, msgSaveFailed))
		return err
	}
	e.state = StateSubmitting
	e.mu.Unlock()

	var (
		res model.WriteResult
		err error
	)
	if mode == ModeEdit {
		res, err = e.w.Update(ctx, draft.RecordID(), draft)
	} else {
		res, err = e.w.Create(ctx, draft)
	}

	e.mu.Lock()
	if err != nil {
		e.state = StateOpen
		e.err = err
		e.mu.Unlock()
		e.notify.Notify(LevelError, model.UserMessage(err, msgSaveFailed))
		return fmt.Errorf("%s %T: %w", mode, draft, err)
	}
	var zero T
	e.draft = zero
	e.state = StateClosed
	e.err = nil
	e.mu.Unlock()

	e.notify.Notify(LevelInfo, messageOr(res.Message, msgSaved))
	if e.onSaved != nil {
		// refresh failures are reported by the list controller itself
		_ = e.onSaved(ctx)
	}
	return nil
}

func (e *Editor[T]) validate(draft T) error {
	if err := model.Validate(draft); err != nil {
		return err
	}
	for _, check := range e.checks {
		if err := check(draft); err != nil {
			return err
		}
	}
	return nil
}

func messageOr(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
