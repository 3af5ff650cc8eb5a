package domain

import "strings"

// ChannelKind identifies how a demand channel was derived.
type ChannelKind string

const (
	KindStoreRequisition ChannelKind = "store_requisition" // internal store transfer
	KindCustomerPickup   ChannelKind = "customer_pickup"   // customer collects at the secondary yard
	KindFixedRegion      ChannelKind = "fixed_region"      // own-fleet delivery, greater Teresina
	KindManualRoute      ChannelKind = "manual_route"      // planner-assigned manifest route
	KindUnclassified     ChannelKind = "unclassified"
)

// Display names for the fixed channels. These are also the allocation bucket
// keys, so they must stay stable across imports.
const (
	ChannelStoreRequisition = "Só Móveis"
	ChannelCustomerPickup   = "Coleta Cliente"
	ChannelFixedRegion      = "Entrega G.Teresina"
)

// Channel is the classification outcome for one order line.
type Channel struct {
	Kind ChannelKind
	Name string
}

// Fixed reports whether the channel is one of the three built-in channels,
// which are the only ones gated by the planning horizon.
func (c Channel) Fixed() bool {
	switch c.Kind {
	case KindStoreRequisition, KindCustomerPickup, KindFixedRegion:
		return true
	}
	return false
}

const ownFleetDeliveryMethod = "ENTREGA PELO GRUPO SO ACO"

type cityState struct {
	city  string
	state string
}

// Destinations served by the company's own fleet. Matched exactly against the
// normalized (city, state) pair of the effective delivery address.
var fixedRegionDestinations = []cityState{
	{"TERESINA", "PI"},
	{"TIMON", "MA"},
	{"DEMERVAL LOBAO", "PI"},
	{"JOSE DE FREITAS", "PI"},
	{"NAZARIA", "PI"},
}

// classificationRules is evaluated in order; the first rule that matches
// wins, which is what keeps the channels disjoint. Order is load-bearing:
// a store requisition with a pickup-looking address is still a store
// requisition, and a manifest on any of the first three kinds is ignored.
var classificationRules = []func(OrderLine) (Channel, bool){
	matchStoreRequisition,
	matchCustomerPickup,
	matchFixedRegion,
	matchManualRoute,
}

// Classify maps an order line to exactly one demand channel.
func Classify(line OrderLine) Channel {
	for _, rule := range classificationRules {
		if ch, ok := rule(line); ok {
			return ch
		}
	}
	return Channel{Kind: KindUnclassified}
}

func matchStoreRequisition(line OrderLine) (Channel, bool) {
	if !line.StoreRequisition {
		return Channel{}, false
	}
	return Channel{Kind: KindStoreRequisition, Name: ChannelStoreRequisition}, true
}

func matchCustomerPickup(line OrderLine) (Channel, bool) {
	addr := NormalizeText(line.Address)
	if addr == "" {
		return Channel{}, false
	}
	// "COL" covers the abbreviated and the full "COLETORA" spelling, same
	// for "SEC"/"SECUNDARIA".
	if strings.Contains(addr, "COL") && strings.Contains(addr, "SEC") {
		return Channel{Kind: KindCustomerPickup, Name: ChannelCustomerPickup}, true
	}
	return Channel{}, false
}

func matchFixedRegion(line OrderLine) (Channel, bool) {
	if NormalizeText(line.DeliveryMethod) != ownFleetDeliveryMethod {
		return Channel{}, false
	}
	city, state := effectiveDestination(line)
	for _, d := range fixedRegionDestinations {
		if city == d.city && state == d.state {
			return Channel{Kind: KindFixedRegion, Name: ChannelFixedRegion}, true
		}
	}
	return Channel{}, false
}

func matchManualRoute(line OrderLine) (Channel, bool) {
	if !line.HasManifest() || ManifestPlaceholder(line.ManifestNotes) {
		return Channel{}, false
	}
	// The route name is the manifest observation text verbatim; trimming or
	// case-folding it would split demand that planners consider one route.
	return Channel{Kind: KindManualRoute, Name: line.ManifestNotes}, true
}

// effectiveDestination resolves where the goods actually go. Orders flagged
// with an alternate delivery address use the delivery pair, everything else
// the customer's registered pair, with the plain city/state fields as a
// fallback when the chosen city is blank.
func effectiveDestination(line OrderLine) (city, state string) {
	if line.AltDelivery == 1 {
		city, state = line.DeliveryCity, line.DeliveryState
	} else {
		city, state = line.CustomerCity, line.CustomerState
	}
	if strings.TrimSpace(city) == "" {
		city, state = line.City, line.State
	}
	return NormalizeText(city), NormalizeText(state)
}
