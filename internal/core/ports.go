package core

import (
	"context"

	"bookstore-admin/internal/core/model"
)

// Lister fetches the full collection of one entity type.
type Lister[T model.Record] interface {
	List(ctx context.Context) ([]T, error)
}

// Source is what a list screen reads from.
type Source[T model.Record] interface {
	Lister[T]
	Search(ctx context.Context, keyword string) ([]T, error)
}

// Writer commits drafts produced by an Editor.
type Writer[T model.Record] interface {
	Create(ctx context.Context, rec T) (model.WriteResult, error)
	Update(ctx context.Context, id string, rec T) (model.WriteResult, error)
}

type Deleter interface {
	Delete(ctx context.Context, id string) (model.WriteResult, error)
}

type OrderCreator interface {
	Create(ctx context.Context, req model.OrderRequest) (model.WriteResult, error)
}

type RevenueSource interface {
	Revenue(ctx context.Context, from, to *model.Date) (model.RevenueStats, error)
}

type AuthClient interface {
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
}

// CredentialStore holds the bearer token between runs.
type CredentialStore interface {
	Token() (string, bool)
	Save(token string) error
	Clear() error
}
