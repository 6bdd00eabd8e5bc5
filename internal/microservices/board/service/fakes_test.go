package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/domain"
)

// fakeGateway keeps rows in memory. Set listErr, failDelete or onList to
// inject failures and delays.
type fakeGateway struct {
	mu         sync.Mutex
	dishes     []domain.Dish
	orders     []domain.Order
	nextID     int
	listErr    error
	writeErr   error
	failDelete map[string]error
	onList     func()
	listCalls  int
	statusSets int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failDelete: map[string]error{}}
}

func (g *fakeGateway) id(prefix string) string {
	g.nextID++
	return fmt.Sprintf("%s-%d", prefix, g.nextID)
}

func (g *fakeGateway) seedOrder(name string, status domain.Status, dishes ...domain.Dish) domain.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	o := domain.Order{
		ID:           g.id("o"),
		CustomerName: name,
		Destination:  domain.DefaultDestination,
		Status:       status,
		CreatedAt:    time.Now(),
		Lines:        []domain.OrderLine{},
	}
	for _, d := range dishes {
		o.Lines = append(o.Lines, domain.OrderLine{OrderID: o.ID, DishID: d.ID, DishName: d.Name, PriceSnapshot: d.Price})
	}
	g.orders = append([]domain.Order{o}, g.orders...)
	return o
}

func (g *fakeGateway) seedDish(name, price string) domain.Dish {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := domain.Dish{ID: g.id("d"), Name: name, Price: decimal.RequireFromString(price), CreatedAt: time.Now()}
	g.dishes = append([]domain.Dish{d}, g.dishes...)
	return d
}

func (g *fakeGateway) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]domain.Dish, len(g.dishes))
	copy(out, g.dishes)
	return out, nil
}

func (g *fakeGateway) CreateDish(ctx context.Context, in domain.DishInput) (domain.Dish, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return domain.Dish{}, g.writeErr
	}
	d := domain.Dish{ID: g.id("d"), Name: in.Name, Price: in.Price.Round(2), Description: in.Description, Tags: in.Tags, CreatedAt: time.Now()}
	g.dishes = append([]domain.Dish{d}, g.dishes...)
	return d, nil
}

func (g *fakeGateway) UpdateDish(ctx context.Context, id string, in domain.DishInput) (domain.Dish, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return domain.Dish{}, g.writeErr
	}
	for i, d := range g.dishes {
		if d.ID == id {
			d.Name, d.Price, d.Description, d.Tags = in.Name, in.Price.Round(2), in.Description, in.Tags
			g.dishes[i] = d
			return d, nil
		}
	}
	return domain.Dish{}, fmt.Errorf("dish %q: %w", id, domain.ErrNotFound)
}

func (g *fakeGateway) DeleteDish(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failDelete[id]; err != nil {
		return err
	}
	kept := g.dishes[:0:0]
	for _, d := range g.dishes {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	g.dishes = kept
	for i, o := range g.orders {
		lines := o.Lines[:0:0]
		for _, l := range o.Lines {
			if l.DishID != id {
				lines = append(lines, l)
			}
		}
		g.orders[i].Lines = lines
	}
	return nil
}

func (g *fakeGateway) ClearAllDishes(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dishes = nil
	return nil
}

func (g *fakeGateway) ListOrders(ctx context.Context, window time.Duration) ([]domain.Order, error) {
	g.mu.Lock()
	g.listCalls++
	err := g.listErr
	out := make([]domain.Order, len(g.orders))
	for i, o := range g.orders {
		out[i] = o.Clone()
	}
	hook := g.onList
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writeErr != nil {
		return domain.Order{}, g.writeErr
	}
	o := domain.Order{
		ID:           g.id("o"),
		CustomerName: req.CustomerName,
		Destination:  req.Destination,
		Status:       domain.StatusOpen,
		CreatedAt:    time.Now(),
		Lines:        []domain.OrderLine{},
	}
	if o.Destination == "" {
		o.Destination = domain.DefaultDestination
	}
	for _, l := range req.Lines {
		o.Lines = append(o.Lines, domain.OrderLine{OrderID: o.ID, DishID: l.DishID, DishName: l.Name, PriceSnapshot: l.Price})
	}
	g.orders = append([]domain.Order{o}, g.orders...)
	return o.Clone(), nil
}

func (g *fakeGateway) SetOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusSets++
	if g.writeErr != nil {
		return domain.Order{}, g.writeErr
	}
	for i := range g.orders {
		if g.orders[i].ID == id {
			g.orders[i].Status = status
			return g.orders[i].Clone(), nil
		}
	}
	return domain.Order{}, fmt.Errorf("order %q: %w", id, domain.ErrNotFound)
}

func (g *fakeGateway) DeleteOrder(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failDelete[id]; err != nil {
		return err
	}
	kept := g.orders[:0:0]
	for _, o := range g.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	g.orders = kept
	return nil
}

func (g *fakeGateway) ClearDoneOrders(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.orders[:0:0]
	for _, o := range g.orders {
		if o.Status != domain.StatusDone {
			kept = append(kept, o)
		}
	}
	g.orders = kept
	return nil
}

func (g *fakeGateway) ClearAllOrders(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders = nil
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	perm     domain.Permission
	answer   domain.Permission
	requests int
	sent     []domain.OrderNotification
}

func (n *fakeNotifier) Permission() domain.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.perm
}

func (n *fakeNotifier) RequestPermission(ctx context.Context) domain.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	n.perm = n.answer
	return n.perm
}

func (n *fakeNotifier) Notify(ctx context.Context, note domain.OrderNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return nil
}

func (n *fakeNotifier) sentIDs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, len(n.sent))
	for i, s := range n.sent {
		ids[i] = s.OrderID
	}
	return ids
}

func testLogger() *logger.Logger { return logger.NewWithWriter("board-test", io.Discard) }

func newTestStore(gw Gateway, n Notifier) *Store {
	lg := testLogger()
	return NewStore(gw, NewDispatcher(n, lg), validation.New(), lg, StoreOptions{})
}
