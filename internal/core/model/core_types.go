package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// All core models live here together for simplicity.

type EntityKind string

const (
	KindCategory  EntityKind = "category"
	KindAuthor    EntityKind = "author"
	KindPublisher EntityKind = "publisher"
	KindBook      EntityKind = "book"
	KindCustomer  EntityKind = "customer"
	KindStaff     EntityKind = "staff"
	KindPromotion EntityKind = "promotion"
	KindOrder     EntityKind = "order"
)

// Record is implemented by every entity exchanged with the admin API.
type Record interface {
	RecordID() string
	Deleted() bool
	// SortValue returns the typed value of the field named key
	// (wire name, e.g. "yearOfPublication").
	SortValue(key string) (any, bool)
}

// Named records can be shown in the two-column id/name picker.
type Named interface {
	Record
	DisplayName() string
}

type Category struct {
	ID        string `json:"id" wire:"required"`
	Name      string `json:"name" validate:"required"`
	IsDeleted bool   `json:"isDeleted"`
}

func (c Category) RecordID() string    { return c.ID }
func (c Category) Deleted() bool       { return c.IsDeleted }
func (c Category) DisplayName() string { return c.Name }

func (c Category) SortValue(key string) (any, bool) {
	return namedSortValue(c.ID, c.Name, c.IsDeleted, key)
}

type Author struct {
	ID        string `json:"id" wire:"required"`
	Name      string `json:"name" validate:"required"`
	IsDeleted bool   `json:"isDeleted"`
}

func (a Author) RecordID() string    { return a.ID }
func (a Author) Deleted() bool       { return a.IsDeleted }
func (a Author) DisplayName() string { return a.Name }

func (a Author) SortValue(key string) (any, bool) {
	return namedSortValue(a.ID, a.Name, a.IsDeleted, key)
}

type Publisher struct {
	ID        string `json:"id" wire:"required"`
	Name      string `json:"name" validate:"required"`
	IsDeleted bool   `json:"isDeleted"`
}

func (p Publisher) RecordID() string    { return p.ID }
func (p Publisher) Deleted() bool       { return p.IsDeleted }
func (p Publisher) DisplayName() string { return p.Name }

func (p Publisher) SortValue(key string) (any, bool) {
	return namedSortValue(p.ID, p.Name, p.IsDeleted, key)
}

func namedSortValue(id, name string, deleted bool, key string) (any, bool) {
	switch key {
	case "id":
		return id, true
	case "name":
		return name, true
	case "isDeleted":
		return deleted, true
	}
	return nil, false
}

// Book carries the denormalized category/author/publisher names the server
// supplies for display. ImageFile is only set when a new cover was chosen.
type Book struct {
	ID                string          `json:"id" wire:"required"`
	ISBN              string          `json:"isbn"`
	Title             string          `json:"title" validate:"required"`
	CategoryID        string          `json:"categoryId" validate:"required"`
	CategoryName      string          `json:"categoryName,omitempty"`
	AuthorID          string          `json:"authorId" validate:"required"`
	AuthorName        string          `json:"authorName,omitempty"`
	PublisherID       string          `json:"publisherId" validate:"required"`
	PublisherName     string          `json:"publisherName,omitempty"`
	YearOfPublication int             `json:"yearOfPublication"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity" validate:"gte=0"`
	IsDeleted         bool            `json:"isDeleted"`
	Image             string          `json:"image,omitempty"`
	ImageFile         *ImageFile      `json:"-"`
}

func (b Book) RecordID() string    { return b.ID }
func (b Book) Deleted() bool       { return b.IsDeleted }
func (b Book) DisplayName() string { return b.Title }

func (b Book) SortValue(key string) (any, bool) {
	switch key {
	case "id":
		return b.ID, true
	case "isbn":
		return b.ISBN, true
	case "title":
		return b.Title, true
	case "categoryName":
		return b.CategoryName, true
	case "authorName":
		return b.AuthorName, true
	case "publisherName":
		return b.PublisherName, true
	case "yearOfPublication":
		return b.YearOfPublication, true
	case "price":
		return b.Price, true
	case "quantity":
		return b.Quantity, true
	case "isDeleted":
		return b.IsDeleted, true
	}
	return nil, false
}

type Customer struct {
	ID          string `json:"id" wire:"required"`
	FamilyName  string `json:"familyName"`
	GivenName   string `json:"givenName" validate:"required"`
	DateOfBirth Date   `json:"dateOfBirth"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Gender      bool   `json:"gender"`
	IsDeleted   bool   `json:"isDeleted"`
}

func (c Customer) RecordID() string    { return c.ID }
func (c Customer) Deleted() bool       { return c.IsDeleted }
func (c Customer) DisplayName() string { return FullName(c.FamilyName, c.GivenName) }

func (c Customer) SortValue(key string) (any, bool) {
	switch key {
	case "id":
		return c.ID, true
	case "familyName":
		return c.FamilyName, true
	case "givenName":
		return c.GivenName, true
	case "dateOfBirth":
		return c.DateOfBirth, true
	case "address":
		return c.Address, true
	case "phone":
		return c.Phone, true
	case "gender":
		return c.Gender, true
	case "isDeleted":
		return c.IsDeleted, true
	}
	return nil, false
}

// Staff.Role is true for administrators.
type Staff struct {
	ID                    string `json:"id" wire:"required"`
	FamilyName            string `json:"familyName"`
	GivenName             string `json:"givenName" validate:"required"`
	DateOfBirth           Date   `json:"dateOfBirth"`
	Address               string `json:"address"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email" validate:"required,email"`
	CitizenIdentification string `json:"citizenIdentification"`
	Role                  bool   `json:"role"`
	Gender                bool   `json:"gender"`
	IsActived             bool   `json:"isActived"`
	IsDeleted             bool   `json:"isDeleted"`
}

func (s Staff) RecordID() string    { return s.ID }
func (s Staff) Deleted() bool       { return s.IsDeleted }
func (s Staff) DisplayName() string { return FullName(s.FamilyName, s.GivenName) }

func (s Staff) SortValue(key string) (any, bool) {
	switch key {
	case "id":
		return s.ID, true
	case "familyName":
		return s.FamilyName, true
	case "givenName":
		return s.GivenName, true
	case "dateOfBirth":
		return s.DateOfBirth, true
	case "address":
		return s.Address, true
	case "phone":
		return s.Phone, true
	case "email":
		return s.Email, true
	case "citizenIdentification":
		return s.CitizenIdentification, true
	case "role":
		return s.Role, true
	case "gender":
		return s.Gender, true
	case "isActived":
		return s.IsActived, true
	case "isDeleted":
		return s.IsDeleted, true
	}
	return nil, false
}

type Promotion struct {
	ID              string          `json:"id" wire:"required"`
	Name            string          `json:"name" validate:"required"`
	StartDate       Date            `json:"startDate" validate:"required"`
	EndDate         Date            `json:"endDate" validate:"required"`
	Condition       string          `json:"condition"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity" validate:"gte=0"`
	IsDeleted       bool            `json:"isDeleted"`
}

func (p Promotion) RecordID() string    { return p.ID }
func (p Promotion) Deleted() bool       { return p.IsDeleted }
func (p Promotion) DisplayName() string { return p.Name }

func (p Promotion) SortValue(key string) (any, bool) {
	switch key {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "startDate":
		return p.StartDate, true
	case "endDate":
		return p.EndDate, true
	case "condition":
		return p.Condition, true
	case "discountPercent":
		return p.DiscountPercent, true
	case "quantity":
		return p.Quantity, true
	case "isDeleted":
		return p.IsDeleted, true
	}
	return nil, false
}

// Order is the read-only list summary. Line items are write-only and travel
// in OrderRequest.
type Order struct {
	ID            string          `json:"id" wire:"required"`
	StaffName     string          `json:"staffName"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	CreatedTime   Date            `json:"createdTime"`
	Status        string          `json:"status"`
	Note          string          `json:"note"`
	ShippingFee   decimal.Decimal `json:"shippingFee"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	IsDeleted     bool            `json:"isDeleted"`
}

func (o Order) RecordID() string { return o.ID }
func (o Order) Deleted() bool    { return o.IsDeleted }

func (o Order) SortValue(key string) (any, bool) {
	switch key {
	case "id":
		return o.ID, true
	case "staffName":
		return o.StaffName, true
	case "customerName":
		return o.CustomerName, true
	case "customerPhone":
		return o.CustomerPhone, true
	case "createdTime":
		return o.CreatedTime, true
	case "status":
		return o.Status, true
	case "note":
		return o.Note, true
	case "shippingFee":
		return o.ShippingFee, true
	case "totalAmount":
		return o.TotalAmount, true
	case "isDeleted":
		return o.IsDeleted, true
	}
	return nil, false
}

// OrderUpdate is the only part of an order the back office may change.
type OrderUpdate struct {
	Status    string `json:"status"`
	Note      string `json:"note"`
	IsDeleted bool   `json:"isDeleted"`
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Tiền mặt"
	PaymentBankTransfer PaymentMethod = "Chuyển khoản"
	PaymentEWallet      PaymentMethod = "Ví điện tử"
)

// ParsePaymentMethod accepts either the wire value or a short alias
// (cash, bank, ewallet).
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", strings.ToLower(string(PaymentCash)):
		return PaymentCash, true
	case "bank", "banktransfer", "transfer", strings.ToLower(string(PaymentBankTransfer)):
		return PaymentBankTransfer, true
	case "ewallet", "e-wallet", "wallet", strings.ToLower(string(PaymentEWallet)):
		return PaymentEWallet, true
	}
	return "", false
}

type OrderItemRequest struct {
	BookID   string `json:"bookId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type OrderRequest struct {
	CustomerID    string             `json:"customerId"`
	PromotionID   *string            `json:"promotionId"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	Items         []OrderItemRequest `json:"items"`
}

type RevenueStats struct {
	TotalOrders    int                        `json:"totalOrders"`
	TotalBooksSold int                        `json:"totalBooksSold"`
	TotalRevenue   decimal.Decimal            `json:"totalRevenue"`
	RevenueByDate  map[string]decimal.Decimal `json:"revenueByDate"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest.Gender is true for male, matching the server contract.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Fullname string `json:"fullname" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
	Gender   bool   `json:"gender"`
}

type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteResult is what create/update/delete endpoints answer with. Both
// fields are optional.
type WriteResult struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

func FullName(family, given string) string {
	return strings.TrimSpace(family + " " + given)
}
