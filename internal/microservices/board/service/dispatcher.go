package service

import (
	"context"
	"sync"
	"time"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// Dispatcher emits at most one notification per order id for the lifetime
// of a session.
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time

	mu     sync.Mutex
	seen   map[string]struct{}
	asked  bool
	denied bool
}

func NewDispatcher(n Notifier, lg *logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: n,
		log:      lg,
		now:      time.Now,
		seen:     make(map[string]struct{}),
	}
}

// Seed marks orders as already viewed without notifying.
func (d *Dispatcher) Seed(orders []domain.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, o := range orders {
		d.seen[o.ID] = struct{}{}
	}
}

// Claim returns the orders not seen before and marks them seen.
func (d *Dispatcher) Claim(orders []domain.Order) []domain.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.Order
	for _, o := range orders {
		if _, ok := d.seen[o.ID]; ok {
			continue
		}
		d.seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}

// Dispatch notifies about claimed orders and returns how many were sent.
// Nothing is sent while permission is not granted.
func (d *Dispatcher) Dispatch(ctx context.Context, orders []domain.Order) int {
	if len(orders) == 0 || !d.allowed(ctx) {
		return 0
	}
	sent := 0
	for _, o := range orders {
		n := domain.NewOrderNotification(o, d.now())
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.log.Warn("notification_failed", err, map[string]any{"order_id": o.ID})
			continue
		}
		sent++
	}
	return sent
}

// allowed prompts for permission lazily, once per session. The prompt runs
// without d.mu held.
func (d *Dispatcher) allowed(ctx context.Context) bool {
	if d.notifier == nil {
		return false
	}
	d.mu.Lock()
	denied := d.denied
	d.mu.Unlock()
	if denied {
		return false
	}

	switch d.notifier.Permission() {
	case domain.PermissionGranted:
		return true
	case domain.PermissionDenied:
		d.deny()
		return false
	}

	d.mu.Lock()
	if d.asked {
		d.mu.Unlock()
		return false
	}
	d.asked = true
	d.mu.Unlock()

	p := d.notifier.RequestPermission(ctx)
	d.log.Info("notification_permission", map[string]any{"permission": string(p)})
	if p == domain.PermissionDenied {
		d.deny()
	}
	return p == domain.PermissionGranted
}

func (d *Dispatcher) deny() {
	d.mu.Lock()
	d.denied = true
	d.mu.Unlock()
}
