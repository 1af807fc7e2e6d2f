//go:build unit

package core

import (
	"context"
	"testing"

	"bookstore-admin/internal/core/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	reqs []model.OrderRequest
	err  error
}

func (f *fakeOrders) Create(_ context.Context, req model.OrderRequest) (model.WriteResult, error) {
	if f.err != nil {
		return model.WriteResult{}, f.err
	}
	f.reqs = append(f.reqs, req)
	return model.WriteResult{ID: "o1"}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestComposer(orders *fakeOrders, strict Strictness, notify Notifier) *OrderComposer {
	return NewOrderComposer(ComposerConfig{
		Orders: orders,
		Customers: &fakeSource[model.Customer]{items: []model.Customer{
			{ID: "cu1", FamilyName: "Nguyễn", GivenName: "An"},
			{ID: "cu2", GivenName: "Gone", IsDeleted: true},
		}},
		Promotions: &fakeSource[model.Promotion]{items: []model.Promotion{
			{ID: "pr1", Name: "Tết", DiscountPercent: dec("10")},
		}},
		Books: &fakeSource[model.Book]{items: []model.Book{
			{ID: "b1", Title: "Dế Mèn", Price: dec("50000"), Quantity: 10},
			{ID: "b2", Title: "Số Đỏ", Price: dec("100000"), Quantity: 3},
		}},
		Notifier:   notify,
		Strictness: strict,
	})
}

func TestComputeTotal(t *testing.T) {
	lines := []Line{{UnitPrice: dec("50000"), Quantity: 3}, {UnitPrice: dec("100000"), Quantity: 1}}
	tot := ComputeTotal(lines, dec("10"))
	assert.True(t, tot.Subtotal.Equal(dec("250000")), tot.Subtotal.String())
	assert.True(t, tot.Discount.Equal(dec("25000")))
	assert.True(t, tot.Total.Equal(dec("225000")), tot.Total.String())

	assert.True(t, ComputeTotal(nil, dec("10")).Total.IsZero())

	odd := ComputeTotal([]Line{{UnitPrice: dec("33333"), Quantity: 1}}, dec("15"))
	assert.Equal(t, "28333.05", odd.Total.String())
}

func TestComposer_PickAndSubmit(t *testing.T) {
	orders := &fakeOrders{}
	rec := &Recorder{}
	c := newTestComposer(orders, StrictValidation, rec)
	saved := 0
	c.onSaved = counter(&saved)
	ctx := context.Background()

	c.Open()
	assert.Equal(t, model.PaymentCash, c.Draft().PaymentMethod)
	require.Len(t, c.Draft().Lines, 1)

	require.NoError(t, c.PickCustomer(ctx))
	assert.Len(t, c.CustomerPicker().Records(), 1, "deleted customers are not offered")
	require.NoError(t, c.CustomerPicker().Select("cu1"))

	require.NoError(t, c.PickPromotion(ctx))
	require.NoError(t, c.PromotionPicker().Select("pr1"))

	require.NoError(t, c.PickBook(ctx, 0))
	require.NoError(t, c.BookPicker().Select("b1"))
	require.NoError(t, c.SetLineQuantity(0, 3))
	require.NoError(t, c.AddLine())
	require.NoError(t, c.PickBook(ctx, 1))
	require.NoError(t, c.BookPicker().Select("b2"))

	d := c.Draft()
	assert.Equal(t, "Nguyễn An", d.Customer.Name)
	assert.Equal(t, "Dế Mèn", d.Lines[0].Title)
	tot := c.Totals()
	assert.Equal(t, "250000", tot.Subtotal.String())
	assert.Equal(t, "225000", tot.Total.String())

	require.NoError(t, c.Submit(ctx))
	require.Len(t, orders.reqs, 1)
	req := orders.reqs[0]
	assert.Equal(t, "cu1", req.CustomerID)
	require.NotNil(t, req.PromotionID)
	assert.Equal(t, "pr1", *req.PromotionID)
	assert.Equal(t, []model.OrderItemRequest{{BookID: "b1", Quantity: 3}, {BookID: "b2", Quantity: 1}}, req.Items)
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, 1, saved)
	assert.Equal(t, msgOrderCreated, rec.Last().Msg)
}

func TestComposer_QuantityCoercedToOne(t *testing.T) {
	c := newTestComposer(&fakeOrders{}, StrictValidation, nil)
	c.Open()
	require.NoError(t, c.SetLineQuantity(0, 0))
	assert.Equal(t, 1, c.Draft().Lines[0].Quantity)
	require.NoError(t, c.SetLineQuantity(0, -4))
	assert.Equal(t, 1, c.Draft().Lines[0].Quantity)
	assert.Error(t, c.SetLineQuantity(3, 2))
}

func TestComposer_RemoveLineAndClearPromotion(t *testing.T) {
	c := newTestComposer(&fakeOrders{}, StrictValidation, nil)
	c.Open()
	require.NoError(t, c.AddLine())
	require.NoError(t, c.ResolveLine(1, model.Book{ID: "b2", Title: "Số Đỏ", Price: dec("100000")}))
	require.NoError(t, c.RemoveLine(0))
	require.Len(t, c.Draft().Lines, 1)
	assert.Equal(t, "b2", c.Draft().Lines[0].BookID)

	require.NoError(t, c.SetPromotion(model.Promotion{ID: "pr1", DiscountPercent: dec("50")}))
	assert.Equal(t, "50000", c.Totals().Total.String())
	require.NoError(t, c.ClearPromotion())
	assert.Equal(t, "100000", c.Totals().Total.String())
	assert.Nil(t, c.Draft().Request().PromotionID)
}

func TestComposer_BookPickerFollowsItsLine(t *testing.T) {
	c := newTestComposer(&fakeOrders{}, StrictValidation, nil)
	ctx := context.Background()
	c.Open()
	require.NoError(t, c.AddLine())
	require.NoError(t, c.AddLine())

	require.NoError(t, c.PickBook(ctx, 2))
	require.NoError(t, c.RemoveLine(0))
	assert.True(t, c.BookPicker().IsOpen(), "removing another line keeps the picker")
	require.NoError(t, c.BookPicker().Select("b2"))

	lines := c.Draft().Lines
	require.Len(t, lines, 2)
	assert.Empty(t, lines[0].BookID)
	assert.Equal(t, "b2", lines[1].BookID)

	require.NoError(t, c.PickBook(ctx, 0))
	require.NoError(t, c.RemoveLine(0))
	assert.False(t, c.BookPicker().IsOpen())
	assert.ErrorIs(t, c.BookPicker().Select("b1"), model.ErrNotOpen)
	lines = c.Draft().Lines
	require.Len(t, lines, 1)
	assert.Equal(t, "b2", lines[0].BookID)
}

func TestComposer_StrictRejectsIncompleteDraft(t *testing.T) {
	orders := &fakeOrders{}
	rec := &Recorder{}
	c := newTestComposer(orders, StrictValidation, rec)
	c.Open()

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, orders.reqs)
	assert.Equal(t, StateOpen, c.State())
	assert.Contains(t, rec.Last().Msg, "customerId")
	assert.Contains(t, rec.Last().Msg, "items[0].bookId")
}

func TestComposer_LenientSendsAsIs(t *testing.T) {
	orders := &fakeOrders{}
	c := newTestComposer(orders, LenientValidation, nil)
	c.Open()
	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, orders.reqs, 1)
	assert.Equal(t, "", orders.reqs[0].CustomerID)
	assert.Equal(t, model.PaymentCash, orders.reqs[0].PaymentMethod)
}

func TestComposer_ServerErrorKeepsDraft(t *testing.T) {
	orders := &fakeOrders{err: &model.HTTPError{Status: 400, Message: "Không đủ hàng"}}
	rec := &Recorder{}
	c := newTestComposer(orders, LenientValidation, rec)
	c.Open()
	require.NoError(t, c.SetPaymentMethod(model.PaymentEWallet))

	require.ErrorIs(t, c.Submit(context.Background()), model.ErrHTTP)
	assert.Equal(t, StateOpen, c.State())
	assert.Equal(t, model.PaymentEWallet, c.Draft().PaymentMethod)
	assert.Equal(t, "Không đủ hàng", rec.Last().Msg)
}

func TestComposer_ClosedRejectsChanges(t *testing.T) {
	c := newTestComposer(&fakeOrders{}, StrictValidation, nil)
	assert.ErrorIs(t, c.AddLine(), model.ErrNotOpen)
	assert.ErrorIs(t, c.PickCustomer(context.Background()), model.ErrNotOpen)
	c.Open()
	c.Cancel()
	assert.ErrorIs(t, c.Submit(context.Background()), model.ErrNotOpen)
}
