package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChannelDemandDTO is one demand bucket of a projection row.
type ChannelDemandDTO struct {
	Demand    decimal.Decimal `json:"demand"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// ComponentDTO is a shelf component's projection embedded in its shelf row.
type ComponentDTO struct {
	Code              string                      `json:"code"`
	Description       string                      `json:"description"`
	StockBalance      decimal.Decimal             `json:"stockBalance"`
	TotalDemand       decimal.Decimal             `json:"totalDemand"`
	PendingProduction decimal.Decimal             `json:"pendingProduction"`
	Channels          map[string]ChannelDemandDTO `json:"channels"`
}

// ProductProjectionDTO is one row of the projection view.
type ProductProjectionDTO struct {
	Code              string                      `json:"code"`
	Description       string                      `json:"description"`
	StockBalance      decimal.Decimal             `json:"stockBalance"`
	TotalDemand       decimal.Decimal             `json:"totalDemand"`
	PendingProduction decimal.Decimal             `json:"pendingProduction"`
	Channels          map[string]ChannelDemandDTO `json:"channels"`
	IsShelf           bool                        `json:"isShelf"`
	Components        []ComponentDTO              `json:"components,omitempty"`
}

// ProjectionSummaryDTO carries the dashboard counters.
type ProjectionSummaryDTO struct {
	UniqueOrders  int `json:"uniqueOrders"`
	OrdersInRoute int `json:"ordersInRoute"`
	Products      int `json:"products"`
	ActiveRoutes  int `json:"activeRoutes"`
}

// ProjectionResultDTO is the full projection response.
type ProjectionResultDTO struct {
	Products     []ProductProjectionDTO `json:"products"`
	ChannelOrder []string               `json:"channelOrder"`
	Summary      ProjectionSummaryDTO   `json:"summary"`
	ComputedAt   time.Time              `json:"computedAt"`
	FromCache    bool                   `json:"fromCache"`
}

// ImportResultDTO reports what an import accepted.
type ImportResultDTO struct {
	Lines            int `json:"lines"`
	Orders           int `json:"orders"`
	RoutesDiscovered int `json:"routesDiscovered"`
}

// RouteDTO is one delivery route in the registry.
type RouteDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Sequence int    `json:"sequence"`
}

// ShelfKitDTO is one shelf kit definition.
type ShelfKitDTO struct {
	ShelfCode         string          `json:"shelfCode"`
	ColumnCode        string          `json:"columnCode"`
	ColumnDescription string          `json:"columnDescription"`
	ColumnQty         decimal.Decimal `json:"columnQty"`
	TrayCode          string          `json:"trayCode"`
	TrayDescription   string          `json:"trayDescription"`
	TrayQty           decimal.Decimal `json:"trayQty"`
}

// OrderLineDTO is one order line with its derived planning attributes.
type OrderLineDTO struct {
	ManifestCode  string          `json:"manifestCode"`
	ManifestNotes string          `json:"manifestNotes"`
	OrderNumber   string          `json:"orderNumber"`
	Customer      string          `json:"customer"`
	ProductCode   string          `json:"productCode"`
	Description   string          `json:"description"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	DeliveryDate  string          `json:"deliveryDate"`
	Channel       string          `json:"channel"`
	ChannelKind   string          `json:"channelKind"`
	WithinHorizon bool            `json:"withinHorizon"`
}

// UserDTO is one account without credentials.
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Profile  string `json:"profile"`
}
