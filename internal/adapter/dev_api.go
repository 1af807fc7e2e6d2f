package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"bookstore-admin/internal/core/model"
	"bookstore-admin/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"
)

const maxBodyBytes = 1 << 20

// DevAPI is an in-memory implementation of the admin and auth APIs. It
// serves the same wire contract as the real back end so the console can be
// run and tested locally.
type DevAPI struct {
	categories *MemRepo[model.Category]
	authors    *MemRepo[model.Author]
	publishers *MemRepo[model.Publisher]
	books      *MemRepo[model.Book]
	customers  *MemRepo[model.Customer]
	staffs     *MemRepo[model.Staff]
	promotions *MemRepo[model.Promotion]
	orders     *MemRepo[model.Order]

	// mu guards the maps below and serializes stock changes.
	mu         sync.Mutex
	users      map[string]devUser // email -> user
	tokens     map[string]string  // token -> email
	orderLines map[string][]devOrderLine
	images     map[string][]byte

	requireAuth bool
	bcryptCost  int
	now         func() time.Time
	log         *slog.Logger
}

type devUser struct {
	Email    string
	Fullname string
	Phone    string
	Gender   bool
	Hash     []byte
}

type devOrderLine struct {
	BookID    string
	Quantity  int
	UnitPrice decimal.Decimal
}

type devConfig struct {
	ids         func(model.EntityKind) string
	requireAuth bool
	bcryptCost  int
	now         func() time.Time
	log         *slog.Logger
}

type DevOption func(*devConfig)

// WithoutAuth serves the admin routes without checking the bearer token.
func WithoutAuth() DevOption {
	return func(c *devConfig) { c.requireAuth = false }
}

func WithIDs(gen func(model.EntityKind) string) DevOption {
	return func(c *devConfig) { c.ids = gen }
}

func WithClock(now func() time.Time) DevOption {
	return func(c *devConfig) { c.now = now }
}

func WithLogger(l *slog.Logger) DevOption {
	return func(c *devConfig) { c.log = l }
}

// WithBcryptCost lowers the hashing cost; meant for tests.
func WithBcryptCost(cost int) DevOption {
	return func(c *devConfig) { c.bcryptCost = cost }
}

var idPrefix = map[model.EntityKind]string{
	model.KindCategory:  "c",
	model.KindAuthor:    "a",
	model.KindPublisher: "p",
	model.KindBook:      "b",
	model.KindCustomer:  "cu",
	model.KindStaff:     "s",
	model.KindPromotion: "pr",
	model.KindOrder:     "o",
}

// SequentialIDs yields short predictable ids per kind: c1, c2, b1, ...
func SequentialIDs() func(model.EntityKind) string {
	var mu sync.Mutex
	counts := map[model.EntityKind]int{}
	return func(k model.EntityKind) string {
		mu.Lock()
		defer mu.Unlock()
		counts[k]++
		return idPrefix[k] + strconv.Itoa(counts[k])
	}
}

func NewDevAPI(opts ...DevOption) *DevAPI {
	cfg := devConfig{
		ids:         func(model.EntityKind) string { return uuid.NewString() },
		requireAuth: true,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	idFor := func(k model.EntityKind) func() string {
		return func() string { return cfg.ids(k) }
	}

	return &DevAPI{
		categories: NewMemRepo(idFor(model.KindCategory),
			func(c *model.Category, id string) { c.ID = id },
			func(c model.Category) []string { return []string{c.Name} }),
		authors: NewMemRepo(idFor(model.KindAuthor),
			func(a *model.Author, id string) { a.ID = id },
			func(a model.Author) []string { return []string{a.Name} }),
		publishers: NewMemRepo(idFor(model.KindPublisher),
			func(p *model.Publisher, id string) { p.ID = id },
			func(p model.Publisher) []string { return []string{p.Name} }),
		books: NewMemRepo(idFor(model.KindBook),
			func(b *model.Book, id string) { b.ID = id },
			func(b model.Book) []string {
				return []string{b.ISBN, b.Title, b.AuthorName, b.CategoryName, b.PublisherName}
			}),
		customers: NewMemRepo(idFor(model.KindCustomer),
			func(c *model.Customer, id string) { c.ID = id },
			func(c model.Customer) []string { return []string{c.FamilyName, c.GivenName, c.Phone, c.Address} }),
		staffs: NewMemRepo(idFor(model.KindStaff),
			func(s *model.Staff, id string) { s.ID = id },
			func(s model.Staff) []string {
				return []string{s.FamilyName, s.GivenName, s.Phone, s.Email, s.CitizenIdentification}
			}),
		promotions: NewMemRepo(idFor(model.KindPromotion),
			func(p *model.Promotion, id string) { p.ID = id },
			func(p model.Promotion) []string { return []string{p.Name, p.Condition} }),
		orders: NewMemRepo(idFor(model.KindOrder),
			func(o *model.Order, id string) { o.ID = id },
			func(o model.Order) []string {
				return []string{o.StaffName, o.CustomerName, o.CustomerPhone, o.Status, o.Note}
			}),
		users:       make(map[string]devUser),
		tokens:      make(map[string]string),
		orderLines:  make(map[string][]devOrderLine),
		images:      make(map[string][]byte),
		requireAuth: cfg.requireAuth,
		bcryptCost:  cfg.bcryptCost,
		now:         cfg.now,
		log:         cfg.log,
	}
}

func (a *DevAPI) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Post(PathLogin, a.login)
	r.Post(PathRegister, a.register)
	r.Get("/images/{name}", a.image)

	r.Group(func(r chi.Router) {
		r.Use(a.authenticate)
		mountCRUD(r, PathCategories, a.categories, decodeJSON[model.Category])
		mountCRUD(r, PathAuthors, a.authors, decodeJSON[model.Author])
		mountCRUD(r, PathPublishers, a.publishers, decodeJSON[model.Publisher])
		mountCRUD(r, PathCustomers, a.customers, decodeJSON[model.Customer])
		mountCRUD(r, PathStaffs, a.staffs, decodeJSON[model.Staff])
		mountCRUD(r, PathPromotions, a.promotions, decodeJSON[model.Promotion])
		mountCRUD(r, PathBooks, a.books, a.decodeBook)
		r.Route(PathOrders, func(r chi.Router) {
			mountRead(r, a.orders)
			mountDelete(r, a.orders)
			r.Post("/", a.createOrder)
			r.Put("/{id}", a.updateOrder)
		})
		r.Get(PathRevenue, a.revenue)
	})
	return otelhttp.NewHandler(r, "devapi")
}

// decodeFunc builds the record for a create (existing == nil) or an
// update of existing.
type decodeFunc[T model.Record] func(r *http.Request, existing *T) (T, error)

func mountCRUD[T model.Record](r chi.Router, base string, repo *MemRepo[T], decode decodeFunc[T]) {
	r.Route(base, func(r chi.Router) {
		mountRead(r, repo)
		mountWrite(r, repo, decode)
		mountDelete(r, repo)
	})
}

func mountRead[T model.Record](r chi.Router, repo *MemRepo[T]) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, repo.List(req.Context()))
	})
	r.Get("/search", func(w http.ResponseWriter, req *http.Request) {
		var keyword string
		if err := runtime.BindQueryParameter("form", true, false, "keyword", req.URL.Query(), &keyword); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, repo.Search(req.Context(), keyword))
	})
}

func mountWrite[T model.Record](r chi.Router, repo *MemRepo[T], decode decodeFunc[T]) {
	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		rec, err := decode(req, nil)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := model.Validate(rec); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := repo.Create(req.Context(), rec)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})
	r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		existing, err := repo.Get(req.Context(), id)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		rec, err := decode(req, &existing)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := model.Validate(rec); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := repo.Update(req.Context(), id, rec)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	})
}

func mountDelete[T model.Record](r chi.Router, repo *MemRepo[T]) {
	r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
		if err := repo.Delete(req.Context(), chi.URLParam(req, "id")); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.WriteResult{Message: "deleted"})
	})
}

func decodeJSON[T model.Record](r *http.Request, _ *T) (T, error) {
	var rec T
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&rec); err != nil {
		return rec, fmt.Errorf("invalid JSON body: %w", err)
	}
	return rec, nil
}

// decodeBook reads the multipart book form. On update the stored image is
// kept unless a new imageFile is sent.
func (a *DevAPI) decodeBook(r *http.Request, existing *model.Book) (model.Book, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return model.Book{}, fmt.Errorf("multipart form: %w", err)
	}
	var b model.Book
	if existing != nil {
		b = *existing
	}
	b.ISBN = r.FormValue("isbn")
	b.Title = r.FormValue("title")
	b.CategoryID = r.FormValue("categoryId")
	b.AuthorID = r.FormValue("authorId")
	b.PublisherID = r.FormValue("publisherId")

	var err error
	if b.YearOfPublication, err = atoiOrZero(r.FormValue("yearOfPublication")); err != nil {
		return model.Book{}, fmt.Errorf("yearOfPublication: %w", err)
	}
	if b.Quantity, err = atoiOrZero(r.FormValue("quantity")); err != nil {
		return model.Book{}, fmt.Errorf("quantity: %w", err)
	}
	b.Price = decimal.Zero
	if s := r.FormValue("price"); s != "" {
		if b.Price, err = decimal.NewFromString(s); err != nil {
			return model.Book{}, fmt.Errorf("price: %w", err)
		}
	}
	b.IsDeleted = false
	if s := r.FormValue("isDeleted"); s != "" {
		if b.IsDeleted, err = strconv.ParseBool(s); err != nil {
			return model.Book{}, fmt.Errorf("isDeleted: %w", err)
		}
	}

	if err := a.resolveBookNames(r.Context(), &b); err != nil {
		return model.Book{}, err
	}

	f, hdr, err := r.FormFile("imageFile")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return model.Book{}, fmt.Errorf("imageFile: %w", err)
	default:
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return model.Book{}, fmt.Errorf("imageFile: %w", err)
		}
		name := "images/" + uuid.NewString() + path.Ext(hdr.Filename)
		a.mu.Lock()
		a.images[name] = data
		a.mu.Unlock()
		b.Image = name
	}
	return b, nil
}

func (a *DevAPI) resolveBookNames(ctx context.Context, b *model.Book) error {
	if b.CategoryID != "" {
		c, err := a.categories.Get(ctx, b.CategoryID)
		if err != nil {
			return fmt.Errorf("unknown categoryId %q", b.CategoryID)
		}
		b.CategoryName = c.Name
	}
	if b.AuthorID != "" {
		au, err := a.authors.Get(ctx, b.AuthorID)
		if err != nil {
			return fmt.Errorf("unknown authorId %q", b.AuthorID)
		}
		b.AuthorName = au.Name
	}
	if b.PublisherID != "" {
		p, err := a.publishers.Get(ctx, b.PublisherID)
		if err != nil {
			return fmt.Errorf("unknown publisherId %q", b.PublisherID)
		}
		b.PublisherName = p.Name
	}
	return nil
}

func (a *DevAPI) image(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	data, ok := a.images["images/"+chi.URLParam(r, "name")]
	a.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func (a *DevAPI) createOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	order, status, err := a.placeOrder(r.Context(), staffFrom(r.Context()), req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// placeOrder checks every reference, prices the lines, takes the stock and
// records the order. The returned status is meaningful only with an error.
func (a *DevAPI) placeOrder(ctx context.Context, staff string, req model.OrderRequest) (model.Order, int, error) {
	if _, ok := model.ParsePaymentMethod(string(req.PaymentMethod)); !ok {
		return model.Order{}, http.StatusBadRequest, fmt.Errorf("unknown payment method %q", req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return model.Order{}, http.StatusBadRequest, errors.New("order has no items")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cust, err := a.customers.Get(ctx, req.CustomerID)
	if err != nil || cust.IsDeleted {
		return model.Order{}, http.StatusBadRequest, fmt.Errorf("customer %q not found", req.CustomerID)
	}

	pct := decimal.Zero
	var promo *model.Promotion
	if promoID := util.Deref(req.PromotionID, ""); promoID != "" {
		p, err := a.promotions.Get(ctx, promoID)
		if err != nil || p.IsDeleted {
			return model.Order{}, http.StatusBadRequest, fmt.Errorf("promotion %q not found", promoID)
		}
		if !a.promotionActive(p) {
			return model.Order{}, http.StatusBadRequest, fmt.Errorf("promotion %q is not available", p.Name)
		}
		pct = p.DiscountPercent
		promo = &p
	}

	needed := map[string]int{}
	books := map[string]model.Book{}
	lines := make([]devOrderLine, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return model.Order{}, http.StatusBadRequest, fmt.Errorf("quantity for book %q must be at least 1", it.BookID)
		}
		b, err := a.books.Get(ctx, it.BookID)
		if err != nil || b.IsDeleted {
			return model.Order{}, http.StatusBadRequest, fmt.Errorf("book %q not found", it.BookID)
		}
		needed[b.ID] += it.Quantity
		books[b.ID] = b
		lines = append(lines, devOrderLine{BookID: b.ID, Quantity: it.Quantity, UnitPrice: b.Price})
		subtotal = subtotal.Add(b.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	for id, qty := range needed {
		if books[id].Quantity < qty {
			return model.Order{}, http.StatusBadRequest, fmt.Errorf("not enough stock for %q", books[id].Title)
		}
	}

	total := subtotal.Sub(subtotal.Mul(pct).Div(decimal.NewFromInt(100)))
	order, err := a.orders.Create(ctx, model.Order{
		StaffName:     staff,
		CustomerName:  cust.DisplayName(),
		CustomerPhone: cust.Phone,
		CreatedTime:   model.NewDate(a.now().UTC().Truncate(time.Second)),
		Status:        "pending",
		ShippingFee:   decimal.Zero,
		TotalAmount:   total,
	})
	if err != nil {
		return model.Order{}, http.StatusInternalServerError, err
	}

	for id, qty := range needed {
		b := books[id]
		b.Quantity -= qty
		if _, err := a.books.Update(ctx, id, b); err != nil {
			return model.Order{}, http.StatusInternalServerError, err
		}
	}
	if promo != nil {
		promo.Quantity--
		if _, err := a.promotions.Update(ctx, promo.ID, *promo); err != nil {
			return model.Order{}, http.StatusInternalServerError, err
		}
	}
	a.orderLines[order.ID] = lines
	return order, 0, nil
}

func (a *DevAPI) promotionActive(p model.Promotion) bool {
	if p.Quantity <= 0 {
		return false
	}
	now := a.now()
	if !p.StartDate.IsZero() && now.Before(p.StartDate.Time) {
		return false
	}
	// the end date is inclusive
	if !p.EndDate.IsZero() && now.After(p.EndDate.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func (a *DevAPI) updateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := a.orders.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	var upd model.OrderUpdate
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	o.Status = upd.Status
	o.Note = upd.Note
	o.IsDeleted = upd.IsDeleted
	updated, err := a.orders.Update(r.Context(), id, o)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// revenue aggregates non-deleted orders created within [from, to].
func (a *DevAPI) revenue(w http.ResponseWriter, r *http.Request) {
	var fromRaw, toRaw string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "from", q, &fromRaw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "to", q, &toRaw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := model.ParseDate(fromRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := model.ParseDate(toRaw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats := model.RevenueStats{TotalRevenue: decimal.Zero, RevenueByDate: map[string]decimal.Decimal{}}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, o := range a.orders.List(r.Context()) {
		if o.IsDeleted {
			continue
		}
		day := o.CreatedTime.String()
		if !from.IsZero() && day < from.String() {
			continue
		}
		if !to.IsZero() && day > to.String() {
			continue
		}
		stats.TotalOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		stats.RevenueByDate[day] = stats.RevenueByDate[day].Add(o.TotalAmount)
		for _, l := range a.orderLines[o.ID] {
			stats.TotalBooksSold += l.Quantity
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *DevAPI) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := model.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.AddUser(req); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, model.AuthResponse{Message: "registered"})
}

// AddUser registers an account directly, bypassing HTTP.
func (a *DevAPI) AddUser(req model.RegisterRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		return err
	}
	email := strings.ToLower(req.Email)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[email]; ok {
		return fmt.Errorf("email %s is already registered", req.Email)
	}
	a.users[email] = devUser{Email: email, Fullname: req.Fullname, Phone: req.Phone, Gender: req.Gender, Hash: hash}
	return nil
}

func (a *DevAPI) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a.mu.Lock()
	u, ok := a.users[strings.ToLower(req.Email)]
	a.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.Hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	token := uuid.NewString()
	a.mu.Lock()
	a.tokens[token] = u.Email
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, model.AuthResponse{Token: token})
}

type staffKey struct{}

func staffFrom(ctx context.Context) string {
	s, _ := ctx.Value(staffKey{}).(string)
	return s
}

func (a *DevAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.requireAuth {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		email, known := a.tokens[token]
		name := a.users[email].Fullname
		a.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), staffKey{}, name)))
	})
}

func (a *DevAPI) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.WriteResult{Message: msg})
}

func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errConflict):
		writeError(w, http.StatusConflict, "already exists")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
