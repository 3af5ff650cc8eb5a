package application

import (
	"github.com/soaco-industrial/projection-service/internal/domain"
)

func toChannelDemandDTOs(channels map[string]domain.ChannelDemand) map[string]ChannelDemandDTO {
	out := make(map[string]ChannelDemandDTO, len(channels))
	for name, cd := range channels {
		out[name] = ChannelDemandDTO{Demand: cd.Demand, Shortfall: cd.Shortfall}
	}
	return out
}

// toProductProjectionDTO maps one projection row, resolving component rows
// from the full projection so shelf entries embed their component detail.
func toProductProjectionDTO(p domain.ProductProjection, byCode map[string]domain.ProductProjection) ProductProjectionDTO {
	dto := ProductProjectionDTO{
		Code:              p.Code,
		Description:       p.Description,
		StockBalance:      p.StockBalance,
		TotalDemand:       p.TotalDemand,
		PendingProduction: p.PendingProduction,
		Channels:          toChannelDemandDTOs(p.Channels),
		IsShelf:           p.IsShelf,
	}
	for _, code := range p.ComponentCodes {
		c, ok := byCode[code]
		if !ok {
			continue
		}
		dto.Components = append(dto.Components, ComponentDTO{
			Code:              c.Code,
			Description:       c.Description,
			StockBalance:      c.StockBalance,
			TotalDemand:       c.TotalDemand,
			PendingProduction: c.PendingProduction,
			Channels:          toChannelDemandDTOs(c.Channels),
		})
	}
	return dto
}

func toRouteDTO(r domain.DeliveryRoute) RouteDTO {
	return RouteDTO{
		ID:       r.ID,
		Name:     r.Name,
		Date:     r.Date.Format("2006-01-02"),
		Sequence: r.Sequence,
	}
}

func toShelfKitDTO(k domain.ShelfKit) ShelfKitDTO {
	return ShelfKitDTO{
		ShelfCode:         k.ShelfCode,
		ColumnCode:        k.ColumnCode,
		ColumnDescription: k.ColumnDescription,
		ColumnQty:         k.ColumnQty,
		TrayCode:          k.TrayCode,
		TrayDescription:   k.TrayDescription,
		TrayQty:           k.TrayQty,
	}
}

func toOrderLineDTO(line domain.OrderLine, h domain.Horizon) OrderLineDTO {
	ch := domain.Classify(line)

	within := false
	if due, ok := domain.ParseOrderDate(line.DeliveryDate); ok {
		within = h.Contains(due)
	}

	return OrderLineDTO{
		ManifestCode:  line.ManifestCode,
		ManifestNotes: line.ManifestNotes,
		OrderNumber:   line.OrderNumber,
		Customer:      line.Customer,
		ProductCode:   line.ProductCode,
		Description:   line.Description,
		Qty:           line.EffectiveQty(),
		UnitPrice:     line.UnitPrice,
		DeliveryDate:  line.DeliveryDate,
		Channel:       ch.Name,
		ChannelKind:   string(ch.Kind),
		WithinHorizon: within,
	}
}

func toUserDTO(a domain.UserAccount) UserDTO {
	return UserDTO{
		ID:       a.ID,
		Username: a.Username,
		Name:     a.Name,
		Profile:  string(a.Profile),
	}
}
