package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/events"
	"github.com/soaco-industrial/projection-service/pkg/logging"
	"github.com/soaco-industrial/projection-service/pkg/metrics"
)

// TopicDataEvents carries the service's integration events.
const TopicDataEvents = "projection.data-events"

const eventSource = "projection-service"

// EventPublisher abstracts the Kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *events.Envelope) error
}

// ProjectionService coordinates imports, the route registry and the stock
// projection. The computed projection is cached and reused until the data
// changes or the calendar day rolls over, since every mutation goes through
// this service.
type ProjectionService struct {
	orders    domain.OrderRepository
	stock     domain.StockRepository
	routes    domain.RouteRepository
	kits      domain.ShelfKitRepository
	publisher EventPublisher
	logger    *logging.Logger
	metrics   *metrics.Metrics
	clock     domain.Clock

	mu      sync.Mutex
	version uint64
	cache   *projectionSnapshot
}

type projectionSnapshot struct {
	version      uint64
	day          time.Time
	products     []domain.ProductProjection
	byCode       map[string]domain.ProductProjection
	channelOrder []string
	summary      ProjectionSummaryDTO
	computedAt   time.Time
}

// NewProjectionService wires the service. publisher may be nil when event
// publishing is disabled.
func NewProjectionService(
	orders domain.OrderRepository,
	stock domain.StockRepository,
	routes domain.RouteRepository,
	kits domain.ShelfKitRepository,
	publisher EventPublisher,
	logger *logging.Logger,
	m *metrics.Metrics,
	clock domain.Clock,
) *ProjectionService {
	return &ProjectionService{
		orders:    orders,
		stock:     stock,
		routes:    routes,
		kits:      kits,
		publisher: publisher,
		logger:    logger.WithComponent("projection-service"),
		metrics:   m,
		clock:     clock,
	}
}

// ImportOrders replaces the order set and synchronizes the route registry
// against the new manifest names.
func (s *ProjectionService) ImportOrders(ctx context.Context, cmd ImportOrdersCommand) (*ImportResultDTO, error) {
	if err := s.orders.ReplaceAll(ctx, cmd.Lines); err != nil {
		return nil, fmt.Errorf("replace orders: %w", err)
	}

	registry, err := s.routes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load route registry: %w", err)
	}
	synced := domain.SynchronizeRoutes(registry, cmd.Lines, s.clock.Now())
	if err := s.routes.ReplaceAll(ctx, synced); err != nil {
		return nil, fmt.Errorf("replace route registry: %w", err)
	}

	s.invalidate()
	s.metrics.RecordOrderLinesImported(len(cmd.Lines))
	s.metrics.SetRoutesActive(len(synced))

	result := &ImportResultDTO{
		Lines:            len(cmd.Lines),
		Orders:           countDistinctOrders(cmd.Lines),
		RoutesDiscovered: len(synced),
	}

	s.logger.Event(ctx, "orders.imported", map[string]any{
		"lines":  result.Lines,
		"orders": result.Orders,
		"routes": result.RoutesDiscovered,
	})
	s.publish(ctx, events.New(events.TypeOrdersReplaced, eventSource, "orders", result))
	s.publish(ctx, events.New(events.TypeRoutesSynced, eventSource, "routes", map[string]any{
		"routes": len(synced),
	}))

	return result, nil
}

// ImportStock replaces the stock balances.
func (s *ProjectionService) ImportStock(ctx context.Context, cmd ImportStockCommand) (*ImportResultDTO, error) {
	if err := s.stock.ReplaceAll(ctx, cmd.Items); err != nil {
		return nil, fmt.Errorf("replace stock: %w", err)
	}

	s.invalidate()
	s.metrics.RecordStockRowsImported(len(cmd.Items))

	s.logger.Event(ctx, "stock.imported", map[string]any{"rows": len(cmd.Items)})
	s.publish(ctx, events.New(events.TypeStockReplaced, eventSource, "stock", map[string]any{
		"rows": len(cmd.Items),
	}))

	return &ImportResultDTO{Lines: len(cmd.Items)}, nil
}

// Projection returns the filtered projection view.
func (s *ProjectionService) Projection(ctx context.Context, query ProjectionQuery) (*ProjectionResultDTO, error) {
	snap, fromCache, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	routeFilter := make(map[string]bool, len(query.Routes))
	for _, r := range query.Routes {
		routeFilter[r] = true
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))

	products := make([]ProductProjectionDTO, 0, len(snap.products))
	for _, p := range snap.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Code), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if len(routeFilter) > 0 && !hasDemandOnAny(p, routeFilter) {
			continue
		}
		products = append(products, toProductProjectionDTO(p, snap.byCode))
	}

	return &ProjectionResultDTO{
		Products:     products,
		ChannelOrder: snap.channelOrder,
		Summary:      snap.summary,
		ComputedAt:   snap.computedAt,
		FromCache:    fromCache,
	}, nil
}

// Orders returns the order listing with derived channel and horizon info.
func (s *ProjectionService) Orders(ctx context.Context, query OrdersQuery) ([]OrderLineDTO, error) {
	lines, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	h := domain.NewHorizon(s.clock.Now())
	search := strings.ToLower(strings.TrimSpace(query.Search))

	out := make([]OrderLineDTO, 0, len(lines))
	for _, line := range lines {
		dto := toOrderLineDTO(line, h)
		if query.Channel != "" && dto.Channel != query.Channel {
			continue
		}
		if search != "" && !matchesOrderSearch(dto, search) {
			continue
		}
		out = append(out, dto)
	}
	return out, nil
}

// Routes returns the registry ordered by sequence.
func (s *ProjectionService) Routes(ctx context.Context) ([]RouteDTO, error) {
	registry, err := s.routes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load route registry: %w", err)
	}

	sorted := domain.SortRoutes(registry)
	out := make([]RouteDTO, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, toRouteDTO(r))
	}
	return out, nil
}

// ResequenceRoutes applies a planner reorder and returns the new registry.
func (s *ProjectionService) ResequenceRoutes(ctx context.Context, cmd ResequenceRoutesCommand) ([]RouteDTO, error) {
	registry, err := s.routes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load route registry: %w", err)
	}

	resequenced, err := domain.ResequenceRoutes(registry, cmd.OrderedIDs)
	if err != nil {
		return nil, err
	}
	if err := s.routes.ReplaceAll(ctx, resequenced); err != nil {
		return nil, fmt.Errorf("replace route registry: %w", err)
	}

	s.invalidate()
	s.publish(ctx, events.New(events.TypeRoutesResequenced, eventSource, "routes", map[string]any{
		"routes": len(resequenced),
	}))

	out := make([]RouteDTO, 0, len(resequenced))
	for _, r := range resequenced {
		out = append(out, toRouteDTO(r))
	}
	return out, nil
}

// SetRouteDate changes a route's planned date.
func (s *ProjectionService) SetRouteDate(ctx context.Context, cmd SetRouteDateCommand) error {
	if strings.TrimSpace(cmd.RouteID) == "" {
		return errors.New("route id is required")
	}
	if err := s.routes.UpdateDate(ctx, cmd.RouteID, domain.Midnight(cmd.Date)); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ShelfKits returns the shelf kit registry.
func (s *ProjectionService) ShelfKits(ctx context.Context) ([]ShelfKitDTO, error) {
	kits, err := s.kits.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shelf kits: %w", err)
	}

	out := make([]ShelfKitDTO, 0, len(kits))
	for _, k := range kits {
		out = append(out, toShelfKitDTO(k))
	}
	return out, nil
}

// SaveShelfKits validates and upserts shelf kit definitions.
func (s *ProjectionService) SaveShelfKits(ctx context.Context, cmd SaveShelfKitsCommand) error {
	for i, kit := range cmd.Kits {
		if err := validateShelfKit(kit); err != nil {
			return fmt.Errorf("kit %d: %w", i+1, err)
		}
	}
	if err := s.kits.UpsertAll(ctx, cmd.Kits); err != nil {
		return fmt.Errorf("upsert shelf kits: %w", err)
	}
	s.invalidate()
	return nil
}

// DeleteShelfKit removes one shelf kit definition.
func (s *ProjectionService) DeleteShelfKit(ctx context.Context, shelfCode string) error {
	if strings.TrimSpace(shelfCode) == "" {
		return errors.New("shelf code is required")
	}
	if err := s.kits.Delete(ctx, shelfCode); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// snapshot returns the cached projection, recomputing when the data version
// or the calendar day changed.
func (s *ProjectionService) snapshot(ctx context.Context) (*projectionSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.Midnight(s.clock.Now())
	if s.cache != nil && s.cache.version == s.version && s.cache.day.Equal(day) {
		s.metrics.RecordProjectionComputed(true, 0)
		return s.cache, true, nil
	}

	start := time.Now()
	version := s.version

	lines, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load orders: %w", err)
	}
	stock, err := s.stock.FindAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load stock: %w", err)
	}
	registry, err := s.routes.FindAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load route registry: %w", err)
	}
	kits, err := s.kits.FindAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load shelf kits: %w", err)
	}

	products := domain.Project(domain.ProjectionInput{
		Lines:   lines,
		Stock:   stock,
		Routes:  registry,
		Kits:    kits,
		Horizon: domain.NewHorizon(s.clock.Now()),
	})

	byCode := make(map[string]domain.ProductProjection, len(products))
	for _, p := range products {
		byCode[p.Code] = p
	}

	snap := &projectionSnapshot{
		version:      version,
		day:          day,
		products:     products,
		byCode:       byCode,
		channelOrder: domain.AllocationPriority(registry),
		summary: ProjectionSummaryDTO{
			UniqueOrders:  countDistinctOrders(lines),
			OrdersInRoute: countDistinctRoutedOrders(lines),
			Products:      len(products),
			ActiveRoutes:  len(registry),
		},
		computedAt: time.Now(),
	}
	s.cache = snap

	duration := time.Since(start)
	s.metrics.RecordProjectionComputed(false, duration)
	s.logger.ProjectionRun(ctx, len(products), false, duration)

	return snap, false, nil
}

// invalidate bumps the data version so the next projection recomputes.
func (s *ProjectionService) invalidate() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

// publish sends an integration event. Publishing is best-effort; a broker
// outage must not fail an import.
func (s *ProjectionService) publish(ctx context.Context, event *events.Envelope) {
	if s.publisher == nil {
		return
	}
	start := time.Now()
	err := s.publisher.PublishEvent(ctx, TopicDataEvents, event)
	s.metrics.RecordEventPublished(TopicDataEvents, event.Type, err)
	s.logger.KafkaPublish(ctx, TopicDataEvents, event.Type, err == nil, time.Since(start))
}

func countDistinctOrders(lines []domain.OrderLine) int {
	seen := make(map[string]bool)
	for _, line := range lines {
		n := strings.TrimSpace(line.OrderNumber)
		if n != "" {
			seen[n] = true
		}
	}
	return len(seen)
}

func countDistinctRoutedOrders(lines []domain.OrderLine) int {
	seen := make(map[string]bool)
	for _, line := range lines {
		n := strings.TrimSpace(line.OrderNumber)
		if n != "" && line.HasManifest() {
			seen[n] = true
		}
	}
	return len(seen)
}

func hasDemandOnAny(p domain.ProductProjection, channels map[string]bool) bool {
	for name, cd := range p.Channels {
		if channels[name] && cd.Demand.IsPositive() {
			return true
		}
	}
	return false
}

func matchesOrderSearch(dto OrderLineDTO, search string) bool {
	for _, field := range []string{dto.OrderNumber, dto.Customer, dto.ProductCode, dto.Description, dto.ManifestNotes} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func validateShelfKit(kit domain.ShelfKit) error {
	if strings.TrimSpace(kit.ShelfCode) == "" {
		return errors.New("shelf code is required")
	}
	if strings.TrimSpace(kit.ColumnCode) == "" {
		return errors.New("column code is required")
	}
	if strings.TrimSpace(kit.TrayCode) == "" {
		return errors.New("tray code is required")
	}
	if !kit.ColumnQty.IsPositive() {
		return errors.New("column quantity must be positive")
	}
	if !kit.TrayQty.IsPositive() {
		return errors.New("tray quantity must be positive")
	}
	return nil
}
