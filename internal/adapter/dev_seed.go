package adapter

import (
	"context"
	"fmt"
	"time"

	"bookstore-admin/internal/core/model"

	"github.com/shopspring/decimal"
)

// Demo account created by Seed.
const (
	SeedEmail    = "admin@bookstore.local"
	SeedPassword = "admin123"
)

// Seed fills the dev API with a small catalogue and one admin account.
func (a *DevAPI) Seed(ctx context.Context) error {
	if err := a.AddUser(model.RegisterRequest{
		Email: SeedEmail, Fullname: "Quản trị viên", Phone: "0900000000", Password: SeedPassword, Gender: true,
	}); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	fiction, err := a.categories.Create(ctx, model.Category{Name: "Fiction"})
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	science, err := a.categories.Create(ctx, model.Category{Name: "Science"})
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	nguyenNhatAnh, err := a.authors.Create(ctx, model.Author{Name: "Nguyễn Nhật Ánh"})
	if err != nil {
		return fmt.Errorf("seed author: %w", err)
	}
	hawking, err := a.authors.Create(ctx, model.Author{Name: "Stephen Hawking"})
	if err != nil {
		return fmt.Errorf("seed author: %w", err)
	}
	tre, err := a.publishers.Create(ctx, model.Publisher{Name: "NXB Trẻ"})
	if err != nil {
		return fmt.Errorf("seed publisher: %w", err)
	}

	books := []model.Book{
		{ISBN: "9786041000001", Title: "Mắt biếc", CategoryID: fiction.ID, AuthorID: nguyenNhatAnh.ID,
			PublisherID: tre.ID, YearOfPublication: 1990, Price: decimal.NewFromInt(110000), Quantity: 40},
		{ISBN: "9786041000002", Title: "Cho tôi xin một vé đi tuổi thơ", CategoryID: fiction.ID, AuthorID: nguyenNhatAnh.ID,
			PublisherID: tre.ID, YearOfPublication: 2008, Price: decimal.NewFromInt(85000), Quantity: 25},
		{ISBN: "9780553380163", Title: "A Brief History of Time", CategoryID: science.ID, AuthorID: hawking.ID,
			PublisherID: tre.ID, YearOfPublication: 1988, Price: decimal.NewFromInt(150000), Quantity: 12},
	}
	for _, b := range books {
		if err := a.resolveBookNames(ctx, &b); err != nil {
			return fmt.Errorf("seed book: %w", err)
		}
		if _, err := a.books.Create(ctx, b); err != nil {
			return fmt.Errorf("seed book: %w", err)
		}
	}

	if _, err := a.customers.Create(ctx, model.Customer{
		FamilyName: "Trần", GivenName: "Bình", Phone: "0912345678", Address: "12 Lê Lợi, Huế",
		DateOfBirth: model.NewDate(time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC)), Gender: true,
	}); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}
	if _, err := a.staffs.Create(ctx, model.Staff{
		FamilyName: "Lê", GivenName: "An", Email: SeedEmail, Phone: "0900000000", Role: true, IsActived: true,
	}); err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}

	now := a.now()
	if _, err := a.promotions.Create(ctx, model.Promotion{
		Name: "Back to school", Condition: "orders from 200000",
		StartDate:       model.NewDate(now.AddDate(0, 0, -7).Truncate(24 * time.Hour)),
		EndDate:         model.NewDate(now.AddDate(0, 1, 0).Truncate(24 * time.Hour)),
		DiscountPercent: decimal.NewFromInt(10), Quantity: 100,
	}); err != nil {
		return fmt.Errorf("seed promotion: %w", err)
	}
	return nil
}
