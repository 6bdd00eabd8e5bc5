package board

import (
	"context"

	"golang.org/x/sync/errgroup"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/config"
	"orderboard/internal/microservices/board/service"
)

// Run holds one staff session: initial load, then a reconciliation cycle
// every poll interval until ctx is canceled.
func Run(ctx context.Context, cfg config.SyncConfig, gw service.Gateway, notifier service.Notifier, lg *logger.Logger) error {
	dispatcher := service.NewDispatcher(notifier, lg)
	store := service.NewStore(gw, dispatcher, validation.New(), lg, service.StoreOptions{Window: cfg.OrderWindow})
	defer store.Close()

	// load failures leave empty collections and are already logged by the store
	var g errgroup.Group
	g.Go(func() error { _ = store.LoadDishes(ctx); return nil })
	g.Go(func() error { _ = store.LoadOrders(ctx); return nil })
	_ = g.Wait()
	lg.Info("board_loaded", map[string]any{
		"dishes": len(store.Dishes()),
		"orders": len(store.Orders()),
	})

	poller := service.NewPoller(cfg.PollInterval, func(ctx context.Context) error {
		sent, err := store.Sync(ctx)
		if err != nil {
			return err
		}
		if sent > 0 {
			lg.Info("new_orders_notified", map[string]any{"count": sent, "orders": len(store.Orders())})
		}
		return nil
	}, lg)
	poller.Start(ctx)

	<-ctx.Done()
	poller.Stop()
	store.Close()
	lg.Info("board_stopped", map[string]any{"last_update": store.LastUpdate()})
	return nil
}
