package console

import (
	"strconv"

	"bookstore-admin/internal/core/model"
)

// field is a sortable table column; key is the wire name used for sorting.
// An empty key marks a column that cannot be sorted on.
type field[T any] struct {
	key    string
	header string
	value  func(T) string
}

func withID[T model.Record](fields []field[T]) []field[T] {
	id := field[T]{"id", "ID", func(r T) string { return r.RecordID() }}
	return append([]field[T]{id}, fields...)
}

func namedFields[T model.Named]() []field[T] {
	return []field[T]{
		{"name", "Name", func(r T) string { return r.DisplayName() }},
		{"isDeleted", "Deleted", func(r T) string { return yesNo(r.Deleted()) }},
	}
}

func bookFields(imageBase string) []field[model.Book] {
	return []field[model.Book]{
		{"isbn", "ISBN", func(b model.Book) string { return b.ISBN }},
		{"title", "Title", func(b model.Book) string { return b.Title }},
		{"authorName", "Author", func(b model.Book) string { return b.AuthorName }},
		{"categoryName", "Category", func(b model.Book) string { return b.CategoryName }},
		{"publisherName", "Publisher", func(b model.Book) string { return b.PublisherName }},
		{"yearOfPublication", "Year", func(b model.Book) string { return strconv.Itoa(b.YearOfPublication) }},
		{"price", "Price", func(b model.Book) string { return model.FormatMoney(b.Price) }},
		{"quantity", "Quantity", func(b model.Book) string { return strconv.Itoa(b.Quantity) }},
		{"isDeleted", "Deleted", func(b model.Book) string { return yesNo(b.IsDeleted) }},
		{"", "Image", func(b model.Book) string { return model.ImageURL(imageBase, b.Image) }},
	}
}

func customerFields() []field[model.Customer] {
	return []field[model.Customer]{
		{"familyName", "Family name", func(c model.Customer) string { return c.FamilyName }},
		{"givenName", "Given name", func(c model.Customer) string { return c.GivenName }},
		{"dateOfBirth", "Birth date", func(c model.Customer) string { return c.DateOfBirth.String() }},
		{"address", "Address", func(c model.Customer) string { return c.Address }},
		{"phone", "Phone", func(c model.Customer) string { return c.Phone }},
		{"gender", "Gender", func(c model.Customer) string { return gender(c.Gender) }},
		{"isDeleted", "Deleted", func(c model.Customer) string { return yesNo(c.IsDeleted) }},
	}
}

func staffFields() []field[model.Staff] {
	return []field[model.Staff]{
		{"familyName", "Family name", func(s model.Staff) string { return s.FamilyName }},
		{"givenName", "Given name", func(s model.Staff) string { return s.GivenName }},
		{"dateOfBirth", "Birth date", func(s model.Staff) string { return s.DateOfBirth.String() }},
		{"phone", "Phone", func(s model.Staff) string { return s.Phone }},
		{"email", "Email", func(s model.Staff) string { return s.Email }},
		{"citizenIdentification", "Citizen ID", func(s model.Staff) string { return s.CitizenIdentification }},
		{"role", "Role", func(s model.Staff) string {
			if s.Role {
				return "admin"
			}
			return "staff"
		}},
		{"gender", "Gender", func(s model.Staff) string { return gender(s.Gender) }},
		{"isActived", "Active", func(s model.Staff) string { return yesNo(s.IsActived) }},
		{"isDeleted", "Deleted", func(s model.Staff) string { return yesNo(s.IsDeleted) }},
	}
}

func promotionFields() []field[model.Promotion] {
	return []field[model.Promotion]{
		{"name", "Name", func(p model.Promotion) string { return p.Name }},
		{"startDate", "Start", func(p model.Promotion) string { return p.StartDate.String() }},
		{"endDate", "End", func(p model.Promotion) string { return p.EndDate.String() }},
		{"condition", "Condition", func(p model.Promotion) string { return p.Condition }},
		{"discountPercent", "Discount %", func(p model.Promotion) string { return p.DiscountPercent.String() }},
		{"quantity", "Remaining", func(p model.Promotion) string { return strconv.Itoa(p.Quantity) }},
		{"isDeleted", "Deleted", func(p model.Promotion) string { return yesNo(p.IsDeleted) }},
	}
}

func orderFields() []field[model.Order] {
	return []field[model.Order]{
		{"staffName", "Staff", func(o model.Order) string { return o.StaffName }},
		{"customerName", "Customer", func(o model.Order) string { return o.CustomerName }},
		{"customerPhone", "Phone", func(o model.Order) string { return o.CustomerPhone }},
		{"createdTime", "Created", func(o model.Order) string {
			if o.CreatedTime.IsZero() {
				return ""
			}
			return o.CreatedTime.Format("2006-01-02 15:04")
		}},
		{"status", "Status", func(o model.Order) string { return o.Status }},
		{"shippingFee", "Shipping", func(o model.Order) string { return model.FormatMoney(o.ShippingFee) }},
		{"totalAmount", "Total", func(o model.Order) string { return model.FormatMoney(o.TotalAmount) }},
		{"isDeleted", "Deleted", func(o model.Order) string { return yesNo(o.IsDeleted) }},
	}
}
