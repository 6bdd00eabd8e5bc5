package order

import (
	"context"
	"fmt"

	"orderboard/internal/common/httpx"
	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/config"
	"orderboard/internal/microservices/order/handlers"
	"orderboard/internal/microservices/order/repository"
)

// Run serves the orderboard HTTP API until ctx is canceled.
func Run(ctx context.Context, cfg config.HTTPConfig, repo *repository.Repository, lg *logger.Logger) error {
	handler := handlers.New(repo, validation.New(), lg)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := httpx.New(addr, handlers.Router(handler, lg, cfg.MaxConcurrent))

	lg.Info("service_started", map[string]any{"addr": addr, "max_concurrent": cfg.MaxConcurrent})
	if err := srv.Run(ctx); err != nil {
		lg.Error("service_failed", err, nil)
		return err
	}
	lg.Info("service_stopped", nil)
	return nil
}
