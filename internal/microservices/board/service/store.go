package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/domain"
)

const defaultBulkLimit = 8

// Store is the session's in-memory view of dishes and orders. Writes go to
// the gateway first and local state only ever takes the canonical value it
// returns.
type Store struct {
	gw         Gateway
	dispatcher *Dispatcher
	validate   *validation.Validator
	log        *logger.Logger
	window     time.Duration
	bulkLimit  int
	now        func() time.Time

	// fetch tickets; a response older than the last applied one is dropped
	dishSeq  atomic.Uint64
	orderSeq atomic.Uint64

	mu            sync.RWMutex
	dishes        []domain.Dish
	orders        []domain.Order
	loadingDishes bool
	loadingOrders bool
	appliedDishes uint64
	appliedOrders uint64
	lastUpdate    time.Time
	closed        bool
}

type StoreOptions struct {
	Window    time.Duration
	BulkLimit int
}

func NewStore(gw Gateway, d *Dispatcher, v *validation.Validator, lg *logger.Logger, opts StoreOptions) *Store {
	if opts.Window <= 0 {
		opts.Window = domain.DefaultOrderWindow
	}
	if opts.BulkLimit <= 0 {
		opts.BulkLimit = defaultBulkLimit
	}
	return &Store{
		gw:            gw,
		dispatcher:    d,
		validate:      v,
		log:           lg,
		window:        opts.Window,
		bulkLimit:     opts.BulkLimit,
		now:           time.Now,
		dishes:        []domain.Dish{},
		orders:        []domain.Order{},
		loadingDishes: true,
		loadingOrders: true,
	}
}

// Close detaches the store. Responses arriving afterwards are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Store) Dishes() []domain.Dish {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Dish, len(s.dishes))
	copy(out, s.dishes)
	return out
}

func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Loading reports whether dishes and orders are still waiting for their first load.
func (s *Store) Loading() (dishes, orders bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadingDishes, s.loadingOrders
}

// LastUpdate is the time of the last successful reconciliation.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

// LoadDishes replaces the catalog. On failure the catalog is emptied.
func (s *Store) LoadDishes(ctx context.Context) error {
	seq := s.dishSeq.Add(1)
	s.setLoading(seq, &s.appliedDishes, &s.loadingDishes)
	dishes, err := s.gw.ListDishes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq < s.appliedDishes {
		return err
	}
	s.appliedDishes = seq
	s.loadingDishes = false
	if err != nil {
		s.dishes = []domain.Dish{}
		s.log.Warn("dishes_load_failed", err, nil)
		return err
	}
	if dishes == nil {
		dishes = []domain.Dish{}
	}
	s.dishes = dishes
	s.lastUpdate = s.now()
	return nil
}

// LoadOrders replaces the order view and marks every loaded order as seen.
// On failure the view is emptied.
func (s *Store) LoadOrders(ctx context.Context) error {
	seq := s.orderSeq.Add(1)
	s.setLoading(seq, &s.appliedOrders, &s.loadingOrders)
	orders, err := s.gw.ListOrders(ctx, s.window)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq < s.appliedOrders {
		return err
	}
	s.appliedOrders = seq
	s.loadingOrders = false
	if err != nil {
		s.orders = []domain.Order{}
		s.log.Warn("orders_load_failed", err, nil)
		return err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	s.dispatcher.Seed(orders)
	s.orders = orders
	s.lastUpdate = s.now()
	return nil
}

// setLoading raises flag unless a newer fetch has already been applied.
func (s *Store) setLoading(seq uint64, applied *uint64, flag *bool) {
	s.mu.Lock()
	if !s.closed && seq > *applied {
		*flag = true
	}
	s.mu.Unlock()
}

// Sync runs one reconciliation cycle: fetch, diff against the current view,
// replace it, then notify about orders never seen before. A failed fetch
// keeps the current view. It returns the number of notifications sent.
func (s *Store) Sync(ctx context.Context) (int, error) {
	seq := s.orderSeq.Add(1)
	orders, err := s.gw.ListOrders(ctx, s.window)
	if err != nil {
		s.log.Warn("sync_failed", err, nil)
		return 0, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	s.mu.Lock()
	if s.closed || seq < s.appliedOrders {
		s.mu.Unlock()
		s.log.Debug("sync_response_dropped", map[string]any{"seq": seq})
		return 0, nil
	}
	fresh := s.dispatcher.Claim(NewArrivals(s.orders, orders))
	s.appliedOrders = seq
	s.orders = orders
	s.loadingOrders = false
	s.lastUpdate = s.now()
	s.mu.Unlock()

	sent := s.dispatcher.Dispatch(ctx, fresh)
	s.log.Debug("sync_completed", map[string]any{"orders": len(orders), "new": len(fresh), "notified": sent})
	return sent, nil
}

func (s *Store) AddDish(ctx context.Context, in domain.DishInput) (domain.Dish, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Dish{}, err
	}
	d, err := s.gw.CreateDish(ctx, in)
	if err != nil {
		return domain.Dish{}, err
	}
	s.apply(func() { s.upsertDish(d) })
	return d, nil
}

func (s *Store) UpdateDish(ctx context.Context, id string, in domain.DishInput) (domain.Dish, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Dish{}, err
	}
	d, err := s.gw.UpdateDish(ctx, id, in)
	if err != nil {
		return domain.Dish{}, err
	}
	s.apply(func() {
		for i := range s.dishes {
			if s.dishes[i].ID == d.ID {
				s.dishes[i] = d
			}
		}
	})
	return d, nil
}

// DeleteDish removes the dish and, like the store's cascade, its order lines.
func (s *Store) DeleteDish(ctx context.Context, id string) error {
	if err := s.gw.DeleteDish(ctx, id); err != nil {
		return err
	}
	s.apply(func() { s.removeDishes(map[string]struct{}{id: {}}) })
	return nil
}

// AddOrder places the order. The new order counts as seen by this session
// and is announced through the dispatcher right away.
func (s *Store) AddOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.Order{}, err
	}
	o, err := s.gw.CreateOrder(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	var fresh []domain.Order
	s.apply(func() {
		s.upsertOrder(o)
		fresh = s.dispatcher.Claim([]domain.Order{o})
	})
	s.dispatcher.Dispatch(ctx, fresh)
	return o.Clone(), nil
}

// UpdateOrderStatus rejects unknown statuses before any remote call.
func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string) (domain.Order, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := s.gw.SetOrderStatus(ctx, id, st)
	if err != nil {
		return domain.Order{}, err
	}
	s.apply(func() {
		for i := range s.orders {
			if s.orders[i].ID == o.ID {
				s.orders[i] = o
			}
		}
	})
	return o.Clone(), nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if err := s.gw.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.apply(func() { s.removeOrders(map[string]struct{}{id: {}}) })
	return nil
}

// ClearDoneOrders deletes every done order in the current view.
func (s *Store) ClearDoneOrders(ctx context.Context) error {
	s.mu.RLock()
	var ids []string
	for _, o := range s.orders {
		if o.Status == domain.StatusDone {
			ids = append(ids, o.ID)
		}
	}
	s.mu.RUnlock()

	deleted, err := s.bulkDelete(ctx, "clear done orders", ids, s.gw.DeleteOrder)
	s.apply(func() { s.removeOrders(deleted) })
	return err
}

func (s *Store) ClearAllOrders(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, len(s.orders))
	for i, o := range s.orders {
		ids[i] = o.ID
	}
	s.mu.RUnlock()

	deleted, err := s.bulkDelete(ctx, "clear all orders", ids, s.gw.DeleteOrder)
	s.apply(func() { s.removeOrders(deleted) })
	return err
}

func (s *Store) ClearAllDishes(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, len(s.dishes))
	for i, d := range s.dishes {
		ids[i] = d.ID
	}
	s.mu.RUnlock()

	deleted, err := s.bulkDelete(ctx, "clear all dishes", ids, s.gw.DeleteDish)
	s.apply(func() { s.removeDishes(deleted) })
	return err
}

// bulkDelete runs one delete per id concurrently and waits for all of them.
// It returns the ids that were deleted and a *domain.BulkError for the rest.
func (s *Store) bulkDelete(ctx context.Context, op string, ids []string, del func(context.Context, string) error) (map[string]struct{}, error) {
	var (
		mu      sync.Mutex
		deleted = make(map[string]struct{}, len(ids))
		failed  = make(map[string]error)
	)
	g := new(errgroup.Group)
	g.SetLimit(s.bulkLimit)
	for _, id := range ids {
		g.Go(func() error {
			err := del(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[id] = err
			} else {
				deleted[id] = struct{}{}
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		bulkErr := &domain.BulkError{Op: op, Failed: failed}
		s.log.Warn("bulk_delete_partial", bulkErr, map[string]any{"deleted": len(deleted), "failed": len(failed)})
		return deleted, bulkErr
	}
	return deleted, nil
}

// apply runs fn under the write lock unless the store is closed.
func (s *Store) apply(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

// upsertOrder replaces the order with o's id, or prepends o when a poll has
// not brought it in yet.
func (s *Store) upsertOrder(o domain.Order) {
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o
			return
		}
	}
	s.orders = append([]domain.Order{o}, s.orders...)
}

func (s *Store) upsertDish(d domain.Dish) {
	for i := range s.dishes {
		if s.dishes[i].ID == d.ID {
			s.dishes[i] = d
			return
		}
	}
	s.dishes = append([]domain.Dish{d}, s.dishes...)
}

func (s *Store) removeOrders(ids map[string]struct{}) {
	if len(ids) == 0 {
		return
	}
	kept := s.orders[:0:0]
	for _, o := range s.orders {
		if _, ok := ids[o.ID]; !ok {
			kept = append(kept, o)
		}
	}
	s.orders = kept
}

func (s *Store) removeDishes(ids map[string]struct{}) {
	if len(ids) == 0 {
		return
	}
	kept := s.dishes[:0:0]
	for _, d := range s.dishes {
		if _, ok := ids[d.ID]; !ok {
			kept = append(kept, d)
		}
	}
	s.dishes = kept

	for i, o := range s.orders {
		lines := o.Lines[:0:0]
		for _, l := range o.Lines {
			if _, ok := ids[l.DishID]; !ok {
				lines = append(lines, l)
			}
		}
		if len(lines) != len(o.Lines) {
			s.orders[i].Lines = lines
		}
	}
}
