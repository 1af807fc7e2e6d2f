package core

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"bookstore-admin/internal/core/model"
)

// Column renders one cell of a picker or list row.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// GenericColumns is the two-column id/name layout used to pick a category,
// author or publisher.
func GenericColumns[T model.Named]() []Column[T] {
	return []Column[T]{
		{Header: "ID", Value: func(r T) string { return r.RecordID() }},
		{Header: "Name", Value: func(r T) string { return r.DisplayName() }},
	}
}

func CustomerColumns() []Column[model.Customer] {
	return []Column[model.Customer]{
		{Header: "ID", Value: func(c model.Customer) string { return c.ID }},
		{Header: "Name", Value: func(c model.Customer) string { return c.DisplayName() }},
		{Header: "Phone", Value: func(c model.Customer) string { return c.Phone }},
		{Header: "Address", Value: func(c model.Customer) string { return c.Address }},
	}
}

func PromotionColumns() []Column[model.Promotion] {
	return []Column[model.Promotion]{
		{Header: "ID", Value: func(p model.Promotion) string { return p.ID }},
		{Header: "Name", Value: func(p model.Promotion) string { return p.Name }},
		{Header: "Discount %", Value: func(p model.Promotion) string { return p.DiscountPercent.String() }},
		{Header: "Start", Value: func(p model.Promotion) string { return p.StartDate.String() }},
		{Header: "End", Value: func(p model.Promotion) string { return p.EndDate.String() }},
		{Header: "Remaining", Value: func(p model.Promotion) string { return strconv.Itoa(p.Quantity) }},
	}
}

func BookColumns() []Column[model.Book] {
	return []Column[model.Book]{
		{Header: "ID", Value: func(b model.Book) string { return b.ID }},
		{Header: "Title", Value: func(b model.Book) string { return b.Title }},
		{Header: "Author", Value: func(b model.Book) string { return b.AuthorName }},
		{Header: "Price", Value: func(b model.Book) string { return model.FormatMoney(b.Price) }},
		{Header: "Stock", Value: func(b model.Book) string { return strconv.Itoa(b.Quantity) }},
	}
}

// Picker lets the operator choose one row of another entity's collection.
// Deleted rows are never offered. Selecting closes the picker.
type Picker[T model.Record] struct {
	kind   model.EntityKind
	src    Lister[T]
	cols   []Column[T]
	notify Notifier

	mu       sync.Mutex
	open     bool
	rows     []T
	onSelect func(T)
}

func NewPicker[T model.Record](kind model.EntityKind, src Lister[T], cols []Column[T], notify Notifier) *Picker[T] {
	return &Picker[T]{kind: kind, src: src, cols: cols, notify: orDiscard(notify)}
}

func (p *Picker[T]) Kind() model.EntityKind { return p.kind }

// Open fetches the collection and remembers onSelect. On a fetch error the
// picker stays closed.
func (p *Picker[T]) Open(ctx context.Context, onSelect func(T)) error {
	all, err := p.src.List(ctx)
	if err != nil {
		p.notify.Notify(LevelError, model.UserMessage(err, fmt.Sprintf("could not load %s list", p.kind)))
		return err
	}
	rows := make([]T, 0, len(all))
	for _, r := range all {
		if !r.Deleted() {
			rows = append(rows, r)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = rows
	p.onSelect = onSelect
	p.open = true
	return nil
}

func (p *Picker[T]) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *Picker[T]) Headers() []string {
	out := make([]string, len(p.cols))
	for i, c := range p.cols {
		out[i] = c.Header
	}
	return out
}

func (p *Picker[T]) Records() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.rows...)
}

// Rows renders the selectable rows with the picker's columns.
func (p *Picker[T]) Rows() [][]string {
	recs := p.Records()
	out := make([][]string, len(recs))
	for i, r := range recs {
		cells := make([]string, len(p.cols))
		for j, c := range p.cols {
			cells[j] = c.Value(r)
		}
		out[i] = cells
	}
	return out
}

// Select hands the row with the given id to the callback and closes.
func (p *Picker[T]) Select(id string) error {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return model.ErrNotOpen
	}
	var (
		chosen T
		found  bool
	)
	for _, r := range p.rows {
		if r.RecordID() == id {
			chosen, found = r, true
			break
		}
	}
	if !found {
		p.mu.Unlock()
		return fmt.Errorf("no selectable %s with id %q", p.kind, id)
	}
	cb := p.onSelect
	p.closeLocked()
	p.mu.Unlock()

	if cb != nil {
		cb(chosen)
	}
	return nil
}

func (p *Picker[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Picker[T]) closeLocked() {
	p.open = false
	p.rows = nil
	p.onSelect = nil
}

// AttachAuthor returns a picker callback that sets the author on the open
// book draft.
func AttachAuthor(ed *Editor[model.Book]) func(model.Author) {
	return func(a model.Author) {
		_ = ed.Edit(func(b *model.Book) {
			b.AuthorID = a.ID
			b.AuthorName = a.Name
		})
	}
}

func AttachCategory(ed *Editor[model.Book]) func(model.Category) {
	return func(c model.Category) {
		_ = ed.Edit(func(b *model.Book) {
			b.CategoryID = c.ID
			b.CategoryName = c.Name
		})
	}
}

func AttachPublisher(ed *Editor[model.Book]) func(model.Publisher) {
	return func(p model.Publisher) {
		_ = ed.Edit(func(b *model.Book) {
			b.PublisherID = p.ID
			b.PublisherName = p.Name
		})
	}
}
