package application

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/events"
	"github.com/soaco-industrial/projection-service/pkg/logging"
	"github.com/soaco-industrial/projection-service/pkg/metrics"
)

type fakeOrderRepo struct {
	lines []domain.OrderLine
}

func (r *fakeOrderRepo) ReplaceAll(_ context.Context, lines []domain.OrderLine) error {
	r.lines = lines
	return nil
}

func (r *fakeOrderRepo) FindAll(context.Context) ([]domain.OrderLine, error) {
	return r.lines, nil
}

func (r *fakeOrderRepo) Count(context.Context) (int64, error) {
	return int64(len(r.lines)), nil
}

type fakeStockRepo struct {
	items []domain.StockItem
}

func (r *fakeStockRepo) ReplaceAll(_ context.Context, items []domain.StockItem) error {
	r.items = items
	return nil
}

func (r *fakeStockRepo) FindAll(context.Context) ([]domain.StockItem, error) {
	return r.items, nil
}

type fakeRouteRepo struct {
	routes []domain.DeliveryRoute
}

func (r *fakeRouteRepo) FindAll(context.Context) ([]domain.DeliveryRoute, error) {
	return r.routes, nil
}

func (r *fakeRouteRepo) ReplaceAll(_ context.Context, routes []domain.DeliveryRoute) error {
	r.routes = routes
	return nil
}

func (r *fakeRouteRepo) UpdateDate(_ context.Context, id string, date time.Time) error {
	for i := range r.routes {
		if r.routes[i].ID == id {
			r.routes[i].Date = date
			return nil
		}
	}
	return domain.ErrUnknownRoute
}

type fakeShelfKitRepo struct {
	kits []domain.ShelfKit
}

func (r *fakeShelfKitRepo) FindAll(context.Context) ([]domain.ShelfKit, error) {
	return r.kits, nil
}

func (r *fakeShelfKitRepo) UpsertAll(_ context.Context, kits []domain.ShelfKit) error {
	for _, kit := range kits {
		replaced := false
		for i := range r.kits {
			if r.kits[i].ShelfCode == kit.ShelfCode {
				r.kits[i] = kit
				replaced = true
				break
			}
		}
		if !replaced {
			r.kits = append(r.kits, kit)
		}
	}
	return nil
}

func (r *fakeShelfKitRepo) Delete(_ context.Context, shelfCode string) error {
	for i := range r.kits {
		if r.kits[i].ShelfCode == shelfCode {
			r.kits = append(r.kits[:i], r.kits[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeAccountRepo struct {
	accounts []domain.UserAccount
}

func (r *fakeAccountRepo) FindAll(context.Context) ([]domain.UserAccount, error) {
	return r.accounts, nil
}

func (r *fakeAccountRepo) FindByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	for i := range r.accounts {
		if r.accounts[i].Username == username {
			a := r.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *domain.UserAccount) error {
	for i := range r.accounts {
		if r.accounts[i].ID == account.ID {
			r.accounts[i] = *account
			return nil
		}
	}
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id string) error {
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

type capturingPublisher struct {
	mu        sync.Mutex
	published []*events.Envelope
}

func (p *capturingPublisher) PublishEvent(_ context.Context, _ string, event *events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.Type)
	}
	return out
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "test",
		Output:      io.Discard,
	})
}

type projectionFixture struct {
	service   *ProjectionService
	orders    *fakeOrderRepo
	stock     *fakeStockRepo
	routes    *fakeRouteRepo
	kits      *fakeShelfKitRepo
	publisher *capturingPublisher
	clock     *fixedClock
}

func newProjectionFixture() *projectionFixture {
	f := &projectionFixture{
		orders:    &fakeOrderRepo{},
		stock:     &fakeStockRepo{},
		routes:    &fakeRouteRepo{},
		kits:      &fakeShelfKitRepo{},
		publisher: &capturingPublisher{},
		clock:     &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)},
	}
	f.service = NewProjectionService(
		f.orders, f.stock, f.routes, f.kits,
		f.publisher, testLogger(), metrics.New("test"), f.clock,
	)
	return f
}
