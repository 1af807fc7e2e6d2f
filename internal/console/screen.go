package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bookstore-admin/internal/core"
	"bookstore-admin/internal/core/model"

	"github.com/shopspring/decimal"
)

// errInput marks failures caused by what the operator typed. They are
// printed by the CLI; everything else has already gone through the notifier.
var errInput = errors.New("invalid input")

func inputErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInput, fmt.Sprintf(format, args...))
}

type ListOptions struct {
	Keyword string
	// Sort holds header clicks in order; repeating a key flips direction.
	Sort []string
}

// EditInput is one add/edit form submission. Data is a JSON object merged
// over the draft. Picks maps a related kind to the id chosen in its picker.
type EditInput struct {
	Data  []byte
	Image string
	Picks map[model.EntityKind]string
}

// Screen is the list/add/edit/delete surface of one entity type.
type Screen interface {
	Kind() model.EntityKind
	List(ctx context.Context, w io.Writer, opts ListOptions) error
	Create(ctx context.Context, in EditInput) error
	Edit(ctx context.Context, id string, in EditInput) error
	Delete(ctx context.Context, id string) error
}

type entityScreen[T model.Record] struct {
	kind    model.EntityKind
	list    *core.ListController[T]
	editor  *core.Editor[T]
	confirm *core.Confirmer
	fields  []field[T]
	// prepare runs on the open draft after Data is merged.
	prepare func(ctx context.Context, in EditInput) error
}

type crud[T model.Record] interface {
	core.Source[T]
	core.Writer[T]
	core.Deleter
}

func newEntityScreen[T model.Record](kind model.EntityKind, res crud[T], fields []field[T], notify core.Notifier, logger *slog.Logger) *entityScreen[T] {
	return newScreenWith(kind, res, res, res, fields, notify, logger)
}

func newScreenWith[T model.Record](kind model.EntityKind, src core.Source[T], w core.Writer[T], d core.Deleter, fields []field[T], notify core.Notifier, logger *slog.Logger) *entityScreen[T] {
	list := core.NewListController(src, notify, logger)
	return &entityScreen[T]{
		kind:    kind,
		list:    list,
		editor:  core.NewEditor(w, nil, notify, list.Refresh),
		confirm: core.NewConfirmer(d, notify, list.Refresh),
		fields:  withID(fields),
	}
}

func (s *entityScreen[T]) Kind() model.EntityKind { return s.kind }

func (s *entityScreen[T]) List(ctx context.Context, w io.Writer, opts ListOptions) error {
	if err := s.load(ctx, opts); err != nil {
		return err
	}
	return s.render(w)
}

func (s *entityScreen[T]) load(ctx context.Context, opts ListOptions) error {
	if err := s.list.SetSearchKeyword(ctx, opts.Keyword); err != nil {
		return err
	}
	for _, key := range opts.Sort {
		if !s.sortable(key) {
			return inputErr("%s cannot be sorted by %q", s.kind, key)
		}
		if err := s.list.SetSort(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *entityScreen[T]) sortable(key string) bool {
	for _, f := range s.fields {
		if key != "" && f.key == key {
			return true
		}
	}
	return false
}

func (s *entityScreen[T]) render(w io.Writer) error {
	st := s.list.Sort()
	headers := make([]string, len(s.fields))
	for i, f := range s.fields {
		headers[i] = f.header + sortMarker(st, f.key)
	}
	items := s.list.Items()
	rows := make([][]string, len(items))
	for i, it := range items {
		cells := make([]string, len(s.fields))
		for j, f := range s.fields {
			cells[j] = f.value(it)
		}
		rows[i] = cells
	}
	return renderTable(w, headers, rows)
}

func (s *entityScreen[T]) Create(ctx context.Context, in EditInput) error {
	s.editor.OpenCreate()
	return s.fill(ctx, in)
}

// Edit opens the editor on the row as currently listed, so the id must be
// one the list shows.
func (s *entityScreen[T]) Edit(ctx context.Context, id string, in EditInput) error {
	if err := s.list.Refresh(ctx); err != nil {
		return err
	}
	rec, ok := s.list.Find(id)
	if !ok {
		return inputErr("no %s with id %q", s.kind, id)
	}
	s.editor.OpenEdit(rec)
	return s.fill(ctx, in)
}

func (s *entityScreen[T]) fill(ctx context.Context, in EditInput) error {
	if err := s.merge(in.Data); err != nil {
		s.editor.Cancel()
		return err
	}
	if s.prepare != nil {
		if err := s.prepare(ctx, in); err != nil {
			s.editor.Cancel()
			return err
		}
	} else if in.Image != "" || len(in.Picks) > 0 {
		s.editor.Cancel()
		return inputErr("%s has no image or related records", s.kind)
	}
	if err := s.editor.Submit(ctx); err != nil {
		s.editor.Cancel()
		return err
	}
	return nil
}

func (s *entityScreen[T]) merge(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var decodeErr error
	err := s.editor.Edit(func(draft *T) {
		id := (*draft).RecordID()
		decodeErr = json.Unmarshal(data, draft)
		if id != "" && (*draft).RecordID() != id {
			decodeErr = errors.New("id cannot be changed")
		}
	})
	if err != nil {
		return err
	}
	if decodeErr != nil {
		return inputErr("%s data: %v", s.kind, decodeErr)
	}
	return nil
}

// Delete stages the id and confirms it.
func (s *entityScreen[T]) Delete(ctx context.Context, id string) error {
	s.confirm.Stage(id)
	return s.confirm.Confirm(ctx)
}

// BookScreen adds the author/category/publisher pickers and cover upload to
// the generic screen.
type BookScreen struct {
	*entityScreen[model.Book]
	authors    *core.Picker[model.Author]
	categories *core.Picker[model.Category]
	publishers *core.Picker[model.Publisher]
}

func newBookScreen(
	res crud[model.Book],
	authors core.Lister[model.Author],
	categories core.Lister[model.Category],
	publishers core.Lister[model.Publisher],
	imageBase string,
	notify core.Notifier,
	logger *slog.Logger,
) *BookScreen {
	b := &BookScreen{
		entityScreen: newEntityScreen(model.KindBook, res, bookFields(imageBase), notify, logger),
		authors:      core.NewPicker(model.KindAuthor, authors, core.GenericColumns[model.Author](), notify),
		categories:   core.NewPicker(model.KindCategory, categories, core.GenericColumns[model.Category](), notify),
		publishers:   core.NewPicker(model.KindPublisher, publishers, core.GenericColumns[model.Publisher](), notify),
	}
	b.prepare = b.attach
	return b
}

func (b *BookScreen) attach(ctx context.Context, in EditInput) error {
	for kind, id := range in.Picks {
		var err error
		switch kind {
		case model.KindAuthor:
			err = pick(ctx, b.authors, id, core.AttachAuthor(b.editor))
		case model.KindCategory:
			err = pick(ctx, b.categories, id, core.AttachCategory(b.editor))
		case model.KindPublisher:
			err = pick(ctx, b.publishers, id, core.AttachPublisher(b.editor))
		default:
			err = inputErr("a book has no %s", kind)
		}
		if err != nil {
			return err
		}
	}
	if in.Image == "" {
		return nil
	}
	img, err := loadImage(in.Image)
	if err != nil {
		return err
	}
	return b.editor.Edit(func(d *model.Book) { d.ImageFile = img })
}

func pick[T model.Record](ctx context.Context, p *core.Picker[T], id string, onSelect func(T)) error {
	if err := p.Open(ctx, onSelect); err != nil {
		return err
	}
	if err := p.Select(id); err != nil {
		p.Close()
		return inputErr("%v", err)
	}
	return nil
}

func loadImage(path string) (*model.ImageFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, inputErr("image: %v", err)
	}
	defer f.Close()
	return model.NewImageFile(filepath.Base(path), f)
}

// OrderScreen lists orders, edits their status and composes new ones.
type OrderScreen struct {
	*entityScreen[model.Order]
	composer *core.OrderComposer
}

// Create is not available on orders; new orders go through Compose.
func (o *OrderScreen) Create(context.Context, EditInput) error {
	return inputErr("orders are created with the compose command")
}

type OrderInput struct {
	Customer  string
	Promotion string
	Payment   string
	// Items are "bookId:quantity" pairs; a missing quantity means 1.
	Items  []string
	DryRun bool
}

// Compose builds an order through the composer's pickers, prints the draft
// and submits it unless DryRun is set.
func (o *OrderScreen) Compose(ctx context.Context, w io.Writer, in OrderInput) error {
	c := o.composer
	c.Open()
	defer func() {
		if c.State() != core.StateClosed {
			c.Cancel()
		}
	}()

	if in.Customer != "" {
		if err := c.PickCustomer(ctx); err != nil {
			return err
		}
		if err := c.CustomerPicker().Select(in.Customer); err != nil {
			return inputErr("%v", err)
		}
	}
	if in.Promotion != "" {
		if err := c.PickPromotion(ctx); err != nil {
			return err
		}
		if err := c.PromotionPicker().Select(in.Promotion); err != nil {
			return inputErr("%v", err)
		}
	}
	if in.Payment != "" {
		m, ok := model.ParsePaymentMethod(in.Payment)
		if !ok {
			return inputErr("unknown payment method %q", in.Payment)
		}
		if err := c.SetPaymentMethod(m); err != nil {
			return err
		}
	}
	for i, raw := range in.Items {
		id, qty, err := parseItem(raw)
		if err != nil {
			return err
		}
		if i > 0 {
			if err := c.AddLine(); err != nil {
				return err
			}
		}
		if err := c.PickBook(ctx, i); err != nil {
			return err
		}
		if err := c.BookPicker().Select(id); err != nil {
			return inputErr("%v", err)
		}
		if err := c.SetLineQuantity(i, qty); err != nil {
			return err
		}
	}

	if err := renderDraft(w, c.Draft(), c.Totals()); err != nil {
		return err
	}
	if in.DryRun {
		return nil
	}
	return c.Submit(ctx)
}

func parseItem(raw string) (string, int, error) {
	id, q, found := strings.Cut(strings.TrimSpace(raw), ":")
	if id == "" {
		return "", 0, inputErr("item %q has no book id", raw)
	}
	if !found {
		return id, 1, nil
	}
	qty, err := strconv.Atoi(q)
	if err != nil {
		return "", 0, inputErr("item %q: quantity must be a number", raw)
	}
	return id, qty, nil
}

func decimalQty(q int) decimal.Decimal { return decimal.NewFromInt(int64(q)) }

func renderDraft(w io.Writer, d core.OrderDraft, t core.Totals) error {
	customer, promotion := "-", "-"
	if d.Customer != nil {
		customer = d.Customer.Name
	}
	if d.Promotion != nil {
		promotion = fmt.Sprintf("%s (%s%%)", d.Promotion.Name, d.Promotion.DiscountPercent)
	}
	fmt.Fprintf(w, "Customer: %s\nPromotion: %s\nPayment: %s\n", customer, promotion, d.PaymentMethod)

	rows := make([][]string, 0, len(d.Lines))
	for _, l := range d.Lines {
		if l.BookID == "" {
			continue
		}
		rows = append(rows, []string{
			l.BookID,
			l.Title,
			model.FormatMoney(l.UnitPrice),
			fmt.Sprint(l.Quantity),
			model.FormatMoney(l.UnitPrice.Mul(decimalQty(l.Quantity))),
		})
	}
	if err := renderTable(w, []string{"Book", "Title", "Unit price", "Qty", "Amount"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Subtotal: %s\nDiscount: %s\nTotal: %s\n",
		model.FormatMoney(t.Subtotal), model.FormatMoney(t.Discount), model.FormatMoney(t.Total))
	return err
}

// StatisticsScreen prints the revenue report.
type StatisticsScreen struct {
	view *core.StatisticsView
}

func (s *StatisticsScreen) Show(ctx context.Context, w io.Writer, from, to string) error {
	f, err := optionalDate(from)
	if err != nil {
		return err
	}
	t, err := optionalDate(to)
	if err != nil {
		return err
	}
	if err := s.view.Load(ctx, f, t); err != nil {
		return err
	}
	st := s.view.Stats()
	fmt.Fprintf(w, "Orders: %d\nBooks sold: %d\nRevenue: %s\n",
		st.TotalOrders, st.TotalBooksSold, model.FormatMoney(st.TotalRevenue))

	days := s.view.Days()
	rows := make([][]string, len(days))
	for i, d := range days {
		rows[i] = []string{d.Date, model.FormatMoney(d.Amount)}
	}
	return renderTable(w, []string{"Date", "Revenue"}, rows)
}

func optionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, inputErr("date %q: %v", s, err)
	}
	return &d, nil
}
