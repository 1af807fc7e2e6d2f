package core

import (
	"context"
	"sync"

	"bookstore-admin/internal/core/model"
)

const (
	msgDeleted      = "deleted"
	msgDeleteFailed = "delete failed"
)

type ConfirmState int

const (
	ConfirmIdle ConfirmState = iota
	ConfirmPending
	ConfirmDeleting
)

// Confirmer stages a single id for deletion. Confirm is terminal: whatever
// the outcome, the staged id is cleared and onDone runs.
type Confirmer struct {
	d      Deleter
	notify Notifier
	onDone func(context.Context) error

	mu      sync.Mutex
	pending string
	state   ConfirmState
}

func NewConfirmer(d Deleter, notify Notifier, onDone func(context.Context) error) *Confirmer {
	return &Confirmer{d: d, notify: orDiscard(notify), onDone: onDone}
}

func (c *Confirmer) Stage(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ConfirmDeleting {
		return
	}
	c.pending = id
	c.state = ConfirmPending
}

func (c *Confirmer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ConfirmDeleting {
		return
	}
	c.pending = ""
	c.state = ConfirmIdle
}

// Pending returns the staged id.
func (c *Confirmer) Pending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.state != ConfirmIdle
}

func (c *Confirmer) State() ConfirmState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Confirmer) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.state != ConfirmPending {
		c.mu.Unlock()
		return model.ErrNothingStaged
	}
	id := c.pending
	c.state = ConfirmDeleting
	c.mu.Unlock()

	res, err := c.d.Delete(ctx, id)
	if err != nil {
		c.notify.Notify(LevelError, model.UserMessage(err, msgDeleteFailed))
	} else {
		c.notify.Notify(LevelInfo, messageOr(res.Message, msgDeleted))
	}

	c.mu.Lock()
	c.pending = ""
	c.state = ConfirmIdle
	c.mu.Unlock()

	if c.onDone != nil {
		_ = c.onDone(ctx)
	}
	return err
}
