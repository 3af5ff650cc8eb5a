package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ChannelDemand is one allocation bucket of a product projection.
type ChannelDemand struct {
	Demand    decimal.Decimal `json:"demand"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// ProductProjection is the consolidated planning row for one product code.
// Shelf products carry demand for display but never allocate their own
// stock; their components do, as separate top-level entries referenced by
// ComponentCodes.
type ProductProjection struct {
	Code              string                   `json:"code"`
	Description       string                   `json:"description"`
	StockBalance      decimal.Decimal          `json:"stockBalance"`
	TotalDemand       decimal.Decimal          `json:"totalDemand"`
	PendingProduction decimal.Decimal          `json:"pendingProduction"`
	Channels          map[string]ChannelDemand `json:"channels"`
	IsShelf           bool                     `json:"isShelf"`
	ComponentCodes    []string                 `json:"componentCodes,omitempty"`
}

// ProjectionInput bundles everything a projection run reads.
type ProjectionInput struct {
	Lines   []OrderLine
	Stock   []StockItem
	Routes  []DeliveryRoute
	Kits    []ShelfKit
	Horizon Horizon
}

// AllocationPriority is the channel sweep order: the three fixed channels
// first, then manual routes by registry sequence.
func AllocationPriority(routes []DeliveryRoute) []string {
	priority := []string{ChannelStoreRequisition, ChannelCustomerPickup, ChannelFixedRegion}
	for _, r := range SortRoutes(routes) {
		priority = append(priority, r.Name)
	}
	return priority
}

// Project consolidates qualifying demand per product and allocates on-hand
// stock across channels in priority order. The result is sorted by product
// code and is a pure function of its input.
func Project(in ProjectionInput) []ProductProjection {
	kits := make(map[string]ShelfKit, len(in.Kits))
	for _, k := range in.Kits {
		kits[productKey(k.ShelfCode)] = k
	}

	entries := make(map[string]*ProductProjection)
	ensure := func(code, description string) *ProductProjection {
		e, ok := entries[code]
		if !ok {
			e = &ProductProjection{
				Code:        code,
				Description: description,
				Channels:    make(map[string]ChannelDemand),
			}
			entries[code] = e
		}
		if e.Description == "" {
			e.Description = description
		}
		return e
	}
	addDemand := func(code, description, channel string, qty decimal.Decimal) *ProductProjection {
		e := ensure(code, description)
		cd := e.Channels[channel]
		cd.Demand = cd.Demand.Add(qty)
		e.Channels[channel] = cd
		e.TotalDemand = e.TotalDemand.Add(qty)
		return e
	}

	for _, line := range in.Lines {
		ch := Classify(line)
		if ch.Kind == KindUnclassified {
			continue
		}
		if ch.Fixed() {
			due, ok := ParseOrderDate(line.DeliveryDate)
			if !ok || !in.Horizon.Contains(due) {
				continue
			}
		}
		code := productKey(line.ProductCode)
		if code == "" {
			continue
		}
		qty := line.EffectiveQty()
		if qty.IsZero() {
			continue
		}

		e := addDemand(code, line.Description, ch.Name, qty)

		if kit, ok := kits[code]; ok {
			e.IsShelf = true
			e.ComponentCodes = []string{productKey(kit.ColumnCode), productKey(kit.TrayCode)}
			addDemand(productKey(kit.ColumnCode), kit.ColumnDescription, ch.Name, qty.Mul(kit.ColumnQty))
			addDemand(productKey(kit.TrayCode), kit.TrayDescription, ch.Name, qty.Mul(kit.TrayQty))
		}
	}

	for _, item := range in.Stock {
		if e, ok := entries[productKey(item.Code)]; ok {
			e.StockBalance = item.FinalBalance
		}
	}

	priority := AllocationPriority(in.Routes)
	priority = append(priority, strayChannels(entries, priority)...)

	for _, e := range entries {
		if e.IsShelf {
			continue
		}
		allocate(e, priority)
	}

	// Shelf rows: the binding constraint is the scarcer component, so the
	// displayed backlog is the worst component backlog, not a sum.
	for _, e := range entries {
		if !e.IsShelf {
			continue
		}
		pending := decimal.Zero
		for _, code := range e.ComponentCodes {
			if c, ok := entries[code]; ok && c.PendingProduction.GreaterThan(pending) {
				pending = c.PendingProduction
			}
		}
		e.PendingProduction = pending
	}

	out := make([]ProductProjection, 0, len(entries))
	for _, e := range entries {
		if e.TotalDemand.IsZero() {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// allocate sweeps the priority list against the product's opening balance.
// Negative balances count as zero, and a channel never draws the balance
// below zero, so a later channel only receives stock once every earlier one
// is fully covered.
func allocate(e *ProductProjection, priority []string) {
	balance := e.StockBalance
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	total := decimal.Zero
	for _, channel := range priority {
		cd, ok := e.Channels[channel]
		if !ok {
			continue
		}
		shortfall := cd.Demand.Sub(balance)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}
		cd.Shortfall = shortfall
		e.Channels[channel] = cd

		balance = balance.Sub(cd.Demand)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		total = total.Add(shortfall)
	}
	e.PendingProduction = total
}

// strayChannels finds bucket names not covered by the priority list. They
// only occur when orders reference routes the registry has not synchronized
// yet; appending them keeps allocation total and deterministic.
func strayChannels(entries map[string]*ProductProjection, priority []string) []string {
	known := make(map[string]bool, len(priority))
	for _, name := range priority {
		known[name] = true
	}
	var stray []string
	seen := make(map[string]bool)
	for _, e := range entries {
		for name := range e.Channels {
			if !known[name] && !seen[name] {
				seen[name] = true
				stray = append(stray, name)
			}
		}
	}
	sort.Strings(stray)
	return stray
}
