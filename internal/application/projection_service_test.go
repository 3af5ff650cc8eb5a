package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/events"
)

func orderLine(orderNumber, product string, qty int64) domain.OrderLine {
	return domain.OrderLine{
		OrderNumber:  orderNumber,
		Customer:     "Comercial Piauí LTDA",
		ProductCode:  product,
		Description:  "Estante de aço",
		QtyOrdered:   decimal.NewFromInt(qty),
		DeliveryDate: "2026-03-12",
	}
}

func routedLine(orderNumber, product string, qty int64, route string) domain.OrderLine {
	line := orderLine(orderNumber, product, qty)
	line.ManifestCode = "ROM-0042"
	line.ManifestNotes = route
	return line
}

func storeReqLine(orderNumber, product string, qty int64) domain.OrderLine {
	line := orderLine(orderNumber, product, qty)
	line.StoreRequisition = true
	return line
}

func TestImportOrders(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	result, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "PA-100", 5, "ROTA PICOS"),
		routedLine("PED-1", "PA-200", 2, "ROTA PICOS"),
		storeReqLine("PED-2", "PA-100", 3),
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Lines)
	assert.Equal(t, 2, result.Orders)
	assert.Equal(t, 1, result.RoutesDiscovered)

	require.Len(t, f.routes.routes, 1)
	assert.Equal(t, "ROTA PICOS", f.routes.routes[0].Name)

	assert.Equal(t, []string{events.TypeOrdersReplaced, events.TypeRoutesSynced}, f.publisher.types())
}

func TestImportOrdersDropsStaleRoutes(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "PA-100", 5, "ROTA A"),
		routedLine("PED-2", "PA-100", 5, "ROTA B"),
	}})
	require.NoError(t, err)
	require.Len(t, f.routes.routes, 2)

	_, err = f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-3", "PA-100", 5, "ROTA B"),
		routedLine("PED-4", "PA-100", 5, "ROTA C"),
	}})
	require.NoError(t, err)

	require.Len(t, f.routes.routes, 2)
	assert.Equal(t, "ROTA B", f.routes.routes[0].Name)
	assert.Equal(t, 1, f.routes.routes[0].Sequence)
	assert.Equal(t, "ROTA C", f.routes.routes[1].Name)
}

func TestProjectionAllocatesAndSummarizes(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		storeReqLine("PED-1", "PA-100", 4),
		routedLine("PED-2", "PA-100", 8, "ROTA PICOS"),
	}})
	require.NoError(t, err)
	_, err = f.service.ImportStock(ctx, ImportStockCommand{Items: []domain.StockItem{
		{Code: "PA-100", FinalBalance: decimal.NewFromInt(10)},
	}})
	require.NoError(t, err)

	result, err := f.service.Projection(ctx, ProjectionQuery{})
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	p := result.Products[0]
	assert.Equal(t, "PA-100", p.Code)
	assert.True(t, p.Channels[domain.ChannelStoreRequisition].Shortfall.IsZero())
	assert.True(t, p.Channels["ROTA PICOS"].Shortfall.Equal(decimal.NewFromInt(2)))
	assert.True(t, p.PendingProduction.Equal(decimal.NewFromInt(2)))

	assert.Equal(t, 2, result.Summary.UniqueOrders)
	assert.Equal(t, 1, result.Summary.OrdersInRoute)
	assert.Equal(t, 1, result.Summary.Products)
	assert.Equal(t, 1, result.Summary.ActiveRoutes)

	assert.Equal(t, []string{
		domain.ChannelStoreRequisition,
		domain.ChannelCustomerPickup,
		domain.ChannelFixedRegion,
		"ROTA PICOS",
	}, result.ChannelOrder)
}

func TestProjectionCaching(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		storeReqLine("PED-1", "PA-100", 4),
	}})
	require.NoError(t, err)

	first, err := f.service.Projection(ctx, ProjectionQuery{})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.service.Projection(ctx, ProjectionQuery{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)

	t.Run("mutation invalidates", func(t *testing.T) {
		_, err := f.service.ImportStock(ctx, ImportStockCommand{Items: []domain.StockItem{
			{Code: "PA-100", FinalBalance: decimal.NewFromInt(1)},
		}})
		require.NoError(t, err)

		result, err := f.service.Projection(ctx, ProjectionQuery{})
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	})

	t.Run("day rollover invalidates", func(t *testing.T) {
		_, err := f.service.Projection(ctx, ProjectionQuery{})
		require.NoError(t, err)

		f.clock.advance(24 * time.Hour)

		result, err := f.service.Projection(ctx, ProjectionQuery{})
		require.NoError(t, err)
		assert.False(t, result.FromCache)
	})
}

func TestProjectionFilters(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "PA-100", 5, "ROTA A"),
		routedLine("PED-2", "PA-200", 5, "ROTA B"),
		storeReqLine("PED-3", "PA-300", 5),
	}})
	require.NoError(t, err)

	t.Run("search by code", func(t *testing.T) {
		result, err := f.service.Projection(ctx, ProjectionQuery{Search: "pa-2"})
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, "PA-200", result.Products[0].Code)
	})

	t.Run("route filter", func(t *testing.T) {
		result, err := f.service.Projection(ctx, ProjectionQuery{Routes: []string{"ROTA A"}})
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, "PA-100", result.Products[0].Code)
	})

	t.Run("no match", func(t *testing.T) {
		result, err := f.service.Projection(ctx, ProjectionQuery{Search: "inexistente"})
		require.NoError(t, err)
		assert.Empty(t, result.Products)
	})
}

func TestProjectionEmbedsShelfComponents(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	require.NoError(t, f.service.SaveShelfKits(ctx, SaveShelfKitsCommand{Kits: []domain.ShelfKit{{
		ShelfCode:  "EST-1",
		ColumnCode: "COL-1",
		ColumnQty:  decimal.NewFromInt(2),
		TrayCode:   "BAN-1",
		TrayQty:    decimal.NewFromInt(3),
	}}}))

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "EST-1", 5, "ROTA A"),
	}})
	require.NoError(t, err)

	result, err := f.service.Projection(ctx, ProjectionQuery{})
	require.NoError(t, err)

	var shelf *ProductProjectionDTO
	for i := range result.Products {
		if result.Products[i].Code == "EST-1" {
			shelf = &result.Products[i]
		}
	}
	require.NotNil(t, shelf)
	assert.True(t, shelf.IsShelf)
	require.Len(t, shelf.Components, 2)
	assert.Equal(t, "COL-1", shelf.Components[0].Code)
	assert.True(t, shelf.Components[0].TotalDemand.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "BAN-1", shelf.Components[1].Code)
	assert.True(t, shelf.Components[1].TotalDemand.Equal(decimal.NewFromInt(15)))
	assert.True(t, shelf.PendingProduction.Equal(decimal.NewFromInt(15)))
}

func TestResequenceRoutes(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "PA-100", 5, "ROTA A"),
		routedLine("PED-2", "PA-100", 5, "ROTA B"),
	}})
	require.NoError(t, err)
	require.Len(t, f.routes.routes, 2)

	ids := []string{f.routes.routes[1].ID, f.routes.routes[0].ID}
	result, err := f.service.ResequenceRoutes(ctx, ResequenceRoutesCommand{OrderedIDs: ids})
	require.NoError(t, err)

	assert.Equal(t, "ROTA B", result[0].Name)
	assert.Equal(t, 1, result[0].Sequence)
	assert.Equal(t, "ROTA A", result[1].Name)

	t.Run("unknown id rejected", func(t *testing.T) {
		_, err := f.service.ResequenceRoutes(ctx, ResequenceRoutesCommand{OrderedIDs: []string{"x", "y"}})
		assert.ErrorIs(t, err, domain.ErrUnknownRoute)
	})
}

func TestSetRouteDate(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "PA-100", 5, "ROTA A"),
	}})
	require.NoError(t, err)

	date := time.Date(2026, 4, 1, 10, 30, 0, 0, time.Local)
	require.NoError(t, f.service.SetRouteDate(ctx, SetRouteDateCommand{
		RouteID: f.routes.routes[0].ID,
		Date:    date,
	}))
	assert.True(t, f.routes.routes[0].Date.Equal(domain.Midnight(date)))

	assert.Error(t, f.service.SetRouteDate(ctx, SetRouteDateCommand{RouteID: " "}))
	assert.ErrorIs(t, f.service.SetRouteDate(ctx, SetRouteDateCommand{RouteID: "missing", Date: date}), domain.ErrUnknownRoute)
}

func TestSaveShelfKitsValidation(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	err := f.service.SaveShelfKits(ctx, SaveShelfKitsCommand{Kits: []domain.ShelfKit{{
		ShelfCode:  "EST-1",
		ColumnCode: "",
		ColumnQty:  decimal.NewFromInt(2),
		TrayCode:   "BAN-1",
		TrayQty:    decimal.NewFromInt(3),
	}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column code is required")
	assert.Empty(t, f.kits.kits)
}

func TestOrdersListing(t *testing.T) {
	f := newProjectionFixture()
	ctx := context.Background()

	_, err := f.service.ImportOrders(ctx, ImportOrdersCommand{Lines: []domain.OrderLine{
		routedLine("PED-1", "PA-100", 5, "ROTA A"),
		storeReqLine("PED-2", "PA-200", 3),
	}})
	require.NoError(t, err)

	all, err := f.service.Orders(ctx, OrdersQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	routed, err := f.service.Orders(ctx, OrdersQuery{Channel: "ROTA A"})
	require.NoError(t, err)
	require.Len(t, routed, 1)
	assert.Equal(t, "PED-1", routed[0].OrderNumber)
	assert.Equal(t, string(domain.KindManualRoute), routed[0].ChannelKind)

	searched, err := f.service.Orders(ctx, OrdersQuery{Search: "ped-2"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "PA-200", searched[0].ProductCode)
}
