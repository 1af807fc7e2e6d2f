package adapter

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"bookstore-admin/internal/core/model"
)

const (
	PathCategories = "/api/admin/categories"
	PathAuthors    = "/api/admin/authors"
	PathPublishers = "/api/admin/publishers"
	PathBooks      = "/api/admin/books"
	PathCustomers  = "/api/admin/customers"
	PathStaffs     = "/api/admin/staffs"
	PathPromotions = "/api/admin/promotions"
	PathOrders     = "/api/admin/orders"
	PathRevenue    = "/api/admin/statistics/revenue"
	PathLogin      = "/api/auth/login"
	PathRegister   = "/api/auth/register"
)

// Resource is the REST surface of one entity base path.
type Resource[T model.Record] struct {
	g    *Gateway
	base string
}

func NewResource[T model.Record](g *Gateway, base string) *Resource[T] {
	return &Resource[T]{g: g, base: base}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.g.JSON(ctx, http.MethodGet, r.base, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Search(ctx context.Context, keyword string) ([]T, error) {
	q, err := encodeQuery(queryParam{"keyword", keyword})
	if err != nil {
		return nil, err
	}
	var out []T
	if err := r.g.JSON(ctx, http.MethodGet, r.base+"/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Create(ctx context.Context, rec T) (model.WriteResult, error) {
	var res model.WriteResult
	err := r.g.JSON(ctx, http.MethodPost, r.base, "", rec, &res)
	return res, err
}

func (r *Resource[T]) Update(ctx context.Context, id string, rec T) (model.WriteResult, error) {
	var res model.WriteResult
	err := r.g.JSON(ctx, http.MethodPut, r.itemPath(id), "", rec, &res)
	return res, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) (model.WriteResult, error) {
	var res model.WriteResult
	err := r.g.JSON(ctx, http.MethodDelete, r.itemPath(id), "", nil, &res)
	return res, err
}

func (r *Resource[T]) itemPath(id string) string {
	return r.base + "/" + url.PathEscape(id)
}

// BookResource sends books as multipart form data so a cover image can
// travel with them.
type BookResource struct {
	*Resource[model.Book]
}

func NewBookResource(g *Gateway) *BookResource {
	return &BookResource{Resource: NewResource[model.Book](g, PathBooks)}
}

func (r *BookResource) Create(ctx context.Context, b model.Book) (model.WriteResult, error) {
	return r.send(ctx, http.MethodPost, r.base, b)
}

func (r *BookResource) Update(ctx context.Context, id string, b model.Book) (model.WriteResult, error) {
	return r.send(ctx, http.MethodPut, r.itemPath(id), b)
}

func (r *BookResource) send(ctx context.Context, method, path string, b model.Book) (model.WriteResult, error) {
	body, contentType, err := EncodeBookForm(b)
	if err != nil {
		return model.WriteResult{}, err
	}
	var res model.WriteResult
	err = r.g.Do(ctx, method, path, "", body, contentType, &res)
	return res, err
}

// EncodeBookForm builds the multipart payload. imageFile is only included
// when a new file was chosen, so the server keeps the existing image.
func EncodeBookForm(b model.Book) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fields := []struct{ k, v string }{
		{"isbn", b.ISBN},
		{"title", b.Title},
		{"categoryId", b.CategoryID},
		{"authorId", b.AuthorID},
		{"publisherId", b.PublisherID},
		{"yearOfPublication", strconv.Itoa(b.YearOfPublication)},
		{"price", b.Price.String()},
		{"quantity", strconv.Itoa(b.Quantity)},
		{"isDeleted", strconv.FormatBool(b.IsDeleted)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.k, f.v); err != nil {
			return nil, "", fmt.Errorf("book form %s: %w", f.k, err)
		}
	}
	if b.ImageFile != nil {
		fw, err := mw.CreateFormFile("imageFile", b.ImageFile.Name)
		if err != nil {
			return nil, "", fmt.Errorf("book form imageFile: %w", err)
		}
		if _, err := fw.Write(b.ImageFile.Data); err != nil {
			return nil, "", fmt.Errorf("book form imageFile: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

// OrderResource lists and deletes orders like any entity, but creates them
// from an OrderRequest and only updates status, note and the deleted flag.
type OrderResource struct {
	*Resource[model.Order]
}

func NewOrderResource(g *Gateway) *OrderResource {
	return &OrderResource{Resource: NewResource[model.Order](g, PathOrders)}
}

func (r *OrderResource) Create(ctx context.Context, req model.OrderRequest) (model.WriteResult, error) {
	var res model.WriteResult
	err := r.g.JSON(ctx, http.MethodPost, r.base, "", req, &res)
	return res, err
}

func (r *OrderResource) Update(ctx context.Context, id string, o model.Order) (model.WriteResult, error) {
	var res model.WriteResult
	upd := model.OrderUpdate{Status: o.Status, Note: o.Note, IsDeleted: o.IsDeleted}
	err := r.g.JSON(ctx, http.MethodPut, r.itemPath(id), "", upd, &res)
	return res, err
}

// StatusWriter adapts the order resource to the editor, which may only
// edit existing orders.
func (r *OrderResource) StatusWriter() OrderStatusWriter {
	return OrderStatusWriter{r: r}
}

type OrderStatusWriter struct {
	r *OrderResource
}

func (w OrderStatusWriter) Create(context.Context, model.Order) (model.WriteResult, error) {
	return model.WriteResult{}, fmt.Errorf("orders are created through the composer: %w", model.ErrUnsupported)
}

func (w OrderStatusWriter) Update(ctx context.Context, id string, o model.Order) (model.WriteResult, error) {
	return w.r.Update(ctx, id, o)
}

type StatisticsResource struct {
	g *Gateway
}

func NewStatisticsResource(g *Gateway) *StatisticsResource {
	return &StatisticsResource{g: g}
}

// Revenue fetches totals for the optional inclusive date range.
func (r *StatisticsResource) Revenue(ctx context.Context, from, to *model.Date) (model.RevenueStats, error) {
	params := make([]queryParam, 0, 2)
	if from != nil && !from.IsZero() {
		params = append(params, queryParam{"from", from.String()})
	}
	if to != nil && !to.IsZero() {
		params = append(params, queryParam{"to", to.String()})
	}
	q, err := encodeQuery(params...)
	if err != nil {
		return model.RevenueStats{}, err
	}
	var out model.RevenueStats
	if err := r.g.JSON(ctx, http.MethodGet, PathRevenue, q, nil, &out); err != nil {
		return model.RevenueStats{}, err
	}
	return out, nil
}

// AuthResource talks to the auth service, which has its own base URL.
type AuthResource struct {
	g *Gateway
}

func NewAuthResource(g *Gateway) *AuthResource {
	return &AuthResource{g: g}
}

func (r *AuthResource) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := r.g.JSON(ctx, http.MethodPost, PathLogin, "", req, &out)
	return out, err
}

func (r *AuthResource) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := r.g.JSON(ctx, http.MethodPost, PathRegister, "", req, &out)
	return out, err
}
