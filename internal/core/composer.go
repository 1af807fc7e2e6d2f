package core

import (
	"context"
	"fmt"
	"sync"

	"bookstore-admin/internal/core/model"
	"bookstore-admin/pkg/util"

	"github.com/shopspring/decimal"
)

const msgOrderCreated = "order created"

// Strictness decides whether the composer refuses to submit an order with
// a missing customer or unresolved lines.
type Strictness int

const (
	StrictValidation Strictness = iota
	LenientValidation
)

type CustomerRef struct {
	ID   string
	Name string
}

type PromotionRef struct {
	ID              string
	Name            string
	DiscountPercent decimal.Decimal
}

// Line is one (book, quantity) entry. Title and UnitPrice are for display
// and never sent.
type Line struct {
	BookID    string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int

	// key identifies the line across removals of earlier lines.
	key int
}

type OrderDraft struct {
	Customer      *CustomerRef
	Promotion     *PromotionRef
	PaymentMethod model.PaymentMethod
	Lines         []Line
}

type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeTotal is exact: subtotal = sum(unitPrice*qty), total = subtotal *
// (1 - pct/100). Rounding is left to display.
func ComputeTotal(lines []Line, discountPercent decimal.Decimal) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	disc := sub.Mul(discountPercent).Div(hundred)
	return Totals{Subtotal: sub, Discount: disc, Total: sub.Sub(disc)}
}

type ComposerConfig struct {
	Orders     OrderCreator
	Customers  Lister[model.Customer]
	Promotions Lister[model.Promotion]
	Books      Lister[model.Book]
	Notifier   Notifier
	OnSaved    func(context.Context) error
	Strictness Strictness
}

// OrderComposer assembles a new order from a customer, an optional
// promotion and a list of book lines, each chosen through its own picker.
type OrderComposer struct {
	orders  OrderCreator
	notify  Notifier
	onSaved func(context.Context) error
	strict  Strictness

	customers  *Picker[model.Customer]
	promotions *Picker[model.Promotion]
	books      *Picker[model.Book]

	mu      sync.Mutex
	draft   OrderDraft
	state   State
	err     error
	lastKey int
	// picking is the key of the line the book picker is bound to, 0 if none.
	picking int
}

func NewOrderComposer(cfg ComposerConfig) *OrderComposer {
	n := orDiscard(cfg.Notifier)
	return &OrderComposer{
		orders:     cfg.Orders,
		notify:     n,
		onSaved:    cfg.OnSaved,
		strict:     cfg.Strictness,
		customers:  NewPicker(model.KindCustomer, cfg.Customers, CustomerColumns(), n),
		promotions: NewPicker(model.KindPromotion, cfg.Promotions, PromotionColumns(), n),
		books:      NewPicker(model.KindBook, cfg.Books, BookColumns(), n),
	}
}

func (c *OrderComposer) CustomerPicker() *Picker[model.Customer]   { return c.customers }
func (c *OrderComposer) PromotionPicker() *Picker[model.Promotion] { return c.promotions }
func (c *OrderComposer) BookPicker() *Picker[model.Book]           { return c.books }

// Open starts a fresh draft with one empty line, paid in cash.
func (c *OrderComposer) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = OrderDraft{
		PaymentMethod: model.PaymentCash,
	}
	c.draft.Lines = []Line{c.newLineLocked()}
	c.picking = 0
	c.state = StateOpen
	c.err = nil
}

func (c *OrderComposer) Cancel() {
	c.mu.Lock()
	c.draft = OrderDraft{}
	c.state = StateClosed
	c.err = nil
	c.picking = 0
	c.mu.Unlock()
	c.customers.Close()
	c.promotions.Close()
	c.books.Close()
}

func (c *OrderComposer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *OrderComposer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Draft returns a copy of the current draft.
func (c *OrderComposer) Draft() OrderDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft
	d.Lines = append([]Line(nil), c.draft.Lines...)
	if c.draft.Customer != nil {
		cust := *c.draft.Customer
		d.Customer = &cust
	}
	if c.draft.Promotion != nil {
		promo := *c.draft.Promotion
		d.Promotion = &promo
	}
	return d
}

func (c *OrderComposer) mutate(fn func(d *OrderDraft) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return model.ErrNotOpen
	}
	return fn(&c.draft)
}

func (c *OrderComposer) newLineLocked() Line {
	c.lastKey++
	return Line{Quantity: 1, key: c.lastKey}
}

func (c *OrderComposer) AddLine() error {
	return c.mutate(func(d *OrderDraft) error {
		d.Lines = append(d.Lines, c.newLineLocked())
		return nil
	})
}

// RemoveLine drops line i. A book picker open for that line is closed.
func (c *OrderComposer) RemoveLine(i int) error {
	closePicker := false
	err := c.mutate(func(d *OrderDraft) error {
		if err := checkIndex(d.Lines, i); err != nil {
			return err
		}
		if d.Lines[i].key == c.picking {
			c.picking = 0
			closePicker = true
		}
		d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
		return nil
	})
	if closePicker {
		c.books.Close()
	}
	return err
}

// SetLineQuantity coerces anything below 1 to 1.
func (c *OrderComposer) SetLineQuantity(i, qty int) error {
	return c.mutate(func(d *OrderDraft) error {
		if err := checkIndex(d.Lines, i); err != nil {
			return err
		}
		d.Lines[i].Quantity = max(qty, 1)
		return nil
	})
}

// ResolveLine points line i at book, keeping its quantity.
func (c *OrderComposer) ResolveLine(i int, book model.Book) error {
	return c.mutate(func(d *OrderDraft) error {
		if err := checkIndex(d.Lines, i); err != nil {
			return err
		}
		setBook(&d.Lines[i], book)
		return nil
	})
}

func setBook(l *Line, book model.Book) {
	l.BookID = book.ID
	l.Title = book.Title
	l.UnitPrice = book.Price
	if l.Quantity < 1 {
		l.Quantity = 1
	}
}

func (c *OrderComposer) SetCustomer(cust model.Customer) error {
	return c.mutate(func(d *OrderDraft) error {
		d.Customer = &CustomerRef{ID: cust.ID, Name: cust.DisplayName()}
		return nil
	})
}

func (c *OrderComposer) SetPromotion(p model.Promotion) error {
	return c.mutate(func(d *OrderDraft) error {
		d.Promotion = &PromotionRef{ID: p.ID, Name: p.Name, DiscountPercent: p.DiscountPercent}
		return nil
	})
}

func (c *OrderComposer) ClearPromotion() error {
	return c.mutate(func(d *OrderDraft) error {
		d.Promotion = nil
		return nil
	})
}

func (c *OrderComposer) SetPaymentMethod(m model.PaymentMethod) error {
	return c.mutate(func(d *OrderDraft) error {
		d.PaymentMethod = m
		return nil
	})
}

func (c *OrderComposer) PickCustomer(ctx context.Context) error {
	if c.State() != StateOpen {
		return model.ErrNotOpen
	}
	return c.customers.Open(ctx, func(cust model.Customer) { _ = c.SetCustomer(cust) })
}

func (c *OrderComposer) PickPromotion(ctx context.Context) error {
	if c.State() != StateOpen {
		return model.ErrNotOpen
	}
	return c.promotions.Open(ctx, func(p model.Promotion) { _ = c.SetPromotion(p) })
}

// PickBook opens the book picker for line i. The selection lands on that
// line even if lines before it are removed meanwhile.
func (c *OrderComposer) PickBook(ctx context.Context, i int) error {
	var key int
	if err := c.mutate(func(d *OrderDraft) error {
		if err := checkIndex(d.Lines, i); err != nil {
			return err
		}
		key = d.Lines[i].key
		c.picking = key
		return nil
	}); err != nil {
		return err
	}
	return c.books.Open(ctx, func(b model.Book) { _ = c.resolveKey(key, b) })
}

func (c *OrderComposer) resolveKey(key int, book model.Book) error {
	return c.mutate(func(d *OrderDraft) error {
		if c.picking == key {
			c.picking = 0
		}
		for i := range d.Lines {
			if d.Lines[i].key == key {
				setBook(&d.Lines[i], book)
				return nil
			}
		}
		return fmt.Errorf("line for book %q was removed", book.ID)
	})
}

func (c *OrderComposer) Totals() Totals {
	d := c.Draft()
	pct := decimal.Zero
	if d.Promotion != nil {
		pct = d.Promotion.DiscountPercent
	}
	return ComputeTotal(d.Lines, pct)
}

// Request packages the draft for the wire: ids and quantities only.
func (d OrderDraft) Request() model.OrderRequest {
	req := model.OrderRequest{
		PaymentMethod: d.PaymentMethod,
		Items:         make([]model.OrderItemRequest, 0, len(d.Lines)),
	}
	if d.Customer != nil {
		req.CustomerID = d.Customer.ID
	}
	if d.Promotion != nil && d.Promotion.ID != "" {
		req.PromotionID = util.GetPtr(d.Promotion.ID)
	}
	for _, l := range d.Lines {
		req.Items = append(req.Items, model.OrderItemRequest{BookID: l.BookID, Quantity: l.Quantity})
	}
	return req
}

func (c *OrderComposer) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return model.ErrNotOpen
	}
	req := c.draft.Request()
	if c.strict == StrictValidation {
		if err := validateOrder(req); err != nil {
			c.err = err
			c.mu.Unlock()
			c.notify.Notify(LevelError, model.UserMessage(err, msgSaveFailed))
			return err
		}
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	res, err := c.orders.Create(ctx, req)

	c.mu.Lock()
	if err != nil {
		c.state = StateOpen
		c.err = err
		c.mu.Unlock()
		c.notify.Notify(LevelError, model.UserMessage(err, "could not create order"))
		return fmt.Errorf("create order: %w", err)
	}
	c.draft = OrderDraft{}
	c.state = StateClosed
	c.err = nil
	c.mu.Unlock()

	c.notify.Notify(LevelInfo, messageOr(res.Message, msgOrderCreated))
	if c.onSaved != nil {
		_ = c.onSaved(ctx)
	}
	return nil
}

func validateOrder(req model.OrderRequest) error {
	fields := map[string]string{}
	if req.CustomerID == "" {
		fields["customerId"] = "must be provided"
	}
	if len(req.Items) == 0 {
		fields["items"] = "must contain at least one line"
	}
	for i, it := range req.Items {
		if it.BookID == "" {
			fields[fmt.Sprintf("items[%d].bookId", i)] = "must be provided"
		}
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

func checkIndex(lines []Line, i int) error {
	if i < 0 || i >= len(lines) {
		return fmt.Errorf("line %d out of range (%d lines)", i, len(lines))
	}
	return nil
}
