package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownRoute      = errors.New("route not found in registry")
	ErrRouteListMismatch = errors.New("ordered id list does not match registry")
	ErrDuplicateRouteID  = errors.New("duplicate route id in ordered list")
)

// DeliveryRoute is one planner-managed manifest route. Sequence is both the
// display order and the stock allocation priority among manual routes.
type DeliveryRoute struct {
	ID       string    `bson:"_id" json:"id"`
	Name     string    `bson:"name" json:"name"`
	Date     time.Time `bson:"date" json:"date"`
	Sequence int       `bson:"sequence" json:"sequence"`
}

// ManifestRouteNames returns the distinct manual-route names referenced by
// the order set, in first appearance order.
func ManifestRouteNames(lines []OrderLine) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range lines {
		ch := Classify(line)
		if ch.Kind != KindManualRoute || seen[ch.Name] {
			continue
		}
		seen[ch.Name] = true
		names = append(names, ch.Name)
	}
	return names
}

// SynchronizeRoutes reconciles the route registry with a freshly imported
// order set. Registered routes whose names still occur keep their identity
// and relative order; names without a route are appended in first-seen order
// with today's date; routes no longer referenced are dropped. Sequences come
// out dense, 1..N. Running it twice over the same orders is a no-op.
func SynchronizeRoutes(registry []DeliveryRoute, lines []OrderLine, now time.Time) []DeliveryRoute {
	names := ManifestRouteNames(lines)

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	current := make([]DeliveryRoute, len(registry))
	copy(current, registry)
	sort.SliceStable(current, func(i, j int) bool { return current[i].Sequence < current[j].Sequence })

	var next []DeliveryRoute
	registered := make(map[string]bool)
	for _, r := range current {
		if !wanted[r.Name] || registered[r.Name] {
			continue
		}
		registered[r.Name] = true
		next = append(next, r)
	}

	for _, n := range names {
		if registered[n] {
			continue
		}
		registered[n] = true
		next = append(next, DeliveryRoute{
			ID:   uuid.NewString(),
			Name: n,
			Date: Midnight(now),
		})
	}

	for i := range next {
		next[i].Sequence = i + 1
	}
	return next
}

// ResequenceRoutes applies a planner reorder. orderedIDs must be a
// permutation of the registry's ids; the result carries sequences 1..N in
// the given order.
func ResequenceRoutes(registry []DeliveryRoute, orderedIDs []string) ([]DeliveryRoute, error) {
	if len(orderedIDs) != len(registry) {
		return nil, ErrRouteListMismatch
	}

	byID := make(map[string]DeliveryRoute, len(registry))
	for _, r := range registry {
		byID[r.ID] = r
	}

	next := make([]DeliveryRoute, 0, len(orderedIDs))
	seen := make(map[string]bool, len(orderedIDs))
	for i, id := range orderedIDs {
		if seen[id] {
			return nil, ErrDuplicateRouteID
		}
		seen[id] = true
		r, ok := byID[id]
		if !ok {
			return nil, ErrUnknownRoute
		}
		r.Sequence = i + 1
		next = append(next, r)
	}
	return next, nil
}

// SortRoutes returns the registry ordered by sequence.
func SortRoutes(routes []DeliveryRoute) []DeliveryRoute {
	sorted := make([]DeliveryRoute, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })
	return sorted
}
