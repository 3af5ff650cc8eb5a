package domain

import (
	"context"
	"time"
)

// OrderRepository persists the imported order set. Imports have
// wholesale-replace semantics: a new file supersedes the previous state.
type OrderRepository interface {
	ReplaceAll(ctx context.Context, lines []OrderLine) error
	FindAll(ctx context.Context) ([]OrderLine, error)
	Count(ctx context.Context) (int64, error)
}

// StockRepository persists the imported stock balances.
type StockRepository interface {
	ReplaceAll(ctx context.Context, items []StockItem) error
	FindAll(ctx context.Context) ([]StockItem, error)
}

// RouteRepository persists the delivery route registry.
type RouteRepository interface {
	FindAll(ctx context.Context) ([]DeliveryRoute, error)
	ReplaceAll(ctx context.Context, routes []DeliveryRoute) error
	UpdateDate(ctx context.Context, id string, date time.Time) error
}

// ShelfKitRepository persists the shelf component registry.
type ShelfKitRepository interface {
	FindAll(ctx context.Context) ([]ShelfKit, error)
	UpsertAll(ctx context.Context, kits []ShelfKit) error
	Delete(ctx context.Context, shelfCode string) error
}

// AccountRepository persists user accounts.
type AccountRepository interface {
	FindAll(ctx context.Context) ([]UserAccount, error)
	FindByUsername(ctx context.Context, username string) (*UserAccount, error)
	Save(ctx context.Context, account *UserAccount) error
	Delete(ctx context.Context, id string) error
}
