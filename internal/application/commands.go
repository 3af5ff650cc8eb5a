package application

import (
	"time"

	"github.com/soaco-industrial/projection-service/internal/domain"
)

// ImportOrdersCommand replaces the order set with a fresh export.
type ImportOrdersCommand struct {
	Lines []domain.OrderLine
}

// ImportStockCommand replaces the stock balances with a fresh export.
type ImportStockCommand struct {
	Items []domain.StockItem
}

// ProjectionQuery filters the projection view.
type ProjectionQuery struct {
	// Search matches product code or description, case-insensitive.
	Search string
	// Routes keeps only products with demand on at least one of the named
	// channels. Empty means no filter.
	Routes []string
}

// OrdersQuery filters the order listing.
type OrdersQuery struct {
	Search  string
	Channel string
}

// ResequenceRoutesCommand applies a planner reorder of the route registry.
type ResequenceRoutesCommand struct {
	OrderedIDs []string
}

// SetRouteDateCommand changes a route's planned date.
type SetRouteDateCommand struct {
	RouteID string
	Date    time.Time
}

// SaveShelfKitsCommand upserts shelf kit definitions.
type SaveShelfKitsCommand struct {
	Kits []domain.ShelfKit
}

// LoginCommand verifies a user's credentials.
type LoginCommand struct {
	Username string
	Password string
}

// CreateUserCommand registers a new account.
type CreateUserCommand struct {
	Username string
	Name     string
	Password string
	Profile  domain.Profile
}

// UpdateUserCommand edits an account. Empty Password keeps the current one.
type UpdateUserCommand struct {
	ID       string
	Name     string
	Password string
	Profile  domain.Profile
}
