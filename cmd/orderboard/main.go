package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"orderboard/internal/common/logger"
	"orderboard/internal/config"
	"orderboard/internal/connections/database"
	"orderboard/internal/connections/rabbitmq"
	"orderboard/internal/domain"
	"orderboard/internal/microservices/board"
	"orderboard/internal/microservices/board/remote"
	boardsvc "orderboard/internal/microservices/board/service"
	"orderboard/internal/microservices/notificator"
	notifysvc "orderboard/internal/microservices/notificator/service"
	"orderboard/internal/microservices/order"
	"orderboard/internal/microservices/order/repository"
)

const modes = "api | board | notification-subscriber | db-init"

func main() {
	mode := flag.String("mode", "", modes)
	configPath := flag.String("config", "", "optional config file with database/rabbitmq/sync/http sections")
	port := flag.Int("port", 0, "api: http port (overrides PORT)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}
	logger.SetLevel(cfg.LogLevel)
	lg := logger.New("bootstrap")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg)
	case "board":
		err = runBoard(ctx, cfg)
	case "notification-subscriber":
		lg.Info("service_started", map[string]any{"service": "notification-subscriber", "exchange": cfg.RabbitMQ.Exchange})
		err = notificator.Start(ctx, cfg.RabbitMQ, logger.New("notification-subscriber"))
	case "db-init":
		err = runDBInit(ctx, cfg, logger.New("db-init"))
	default:
		fmt.Fprintln(os.Stderr, "--mode is required:", modes)
		os.Exit(2)
	}
	if err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
}

// openRepository connects to the store. A missing DATABASE_URL is not fatal:
// the repository then answers every call with ErrConfiguration.
func openRepository(ctx context.Context, cfg *config.Config, lg *logger.Logger) (*repository.Repository, func(), error) {
	db, err := database.ConnectDB(ctx, cfg.Database)
	if errors.Is(err, domain.ErrConfiguration) {
		lg.Warn("db_not_configured", err, nil)
		return repository.New(nil), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	lg.Info("db_connected", map[string]any{"dialect": db.Dialect.Name})
	return repository.New(db), func() { _ = db.Close() }, nil
}

func runAPI(ctx context.Context, cfg *config.Config) error {
	lg := logger.New("orderboard-api")
	repo, closeDB, err := openRepository(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := repo.EnsureSchema(ctx); err != nil && !errors.Is(err, domain.ErrConfiguration) {
		lg.Warn("schema_not_applied", err, nil)
	}
	return order.Run(ctx, cfg.HTTP, repo, lg)
}

func runBoard(ctx context.Context, cfg *config.Config) error {
	lg := logger.New("board")

	var gw boardsvc.Gateway
	if cfg.Sync.APIURL != "" {
		gw = remote.New(cfg.Sync.APIURL, nil)
		lg.Info("gateway_selected", map[string]any{"gateway": "remote", "api_url": cfg.Sync.APIURL})
	} else {
		repo, closeDB, err := openRepository(ctx, cfg, lg)
		if err != nil {
			return err
		}
		defer closeDB()
		gw = repo
		lg.Info("gateway_selected", map[string]any{"gateway": "sql"})
	}

	var notifier boardsvc.Notifier = notifysvc.NewLogNotifier(lg)
	if cfg.RabbitMQ.URL != "" {
		client, err := rabbitmq.Dial(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			lg.Warn("rabbitmq_unavailable", err, map[string]any{"fallback": "log"})
		} else {
			defer client.Close()
			notifier = notifysvc.NewAMQPNotifier(client, cfg.RabbitMQ.Exchange, lg)
		}
	}

	lg.Info("service_started", map[string]any{"service": "board", "poll_interval": cfg.Sync.PollInterval.String()})
	return board.Run(ctx, cfg.Sync, gw, notifier, lg)
}

func runDBInit(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	db, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	seeded, err := repo.SeedDemoDishes(ctx)
	if err != nil {
		return err
	}
	lg.Info("db_initialized", map[string]any{"dialect": db.Dialect.Name, "seeded": seeded})
	return nil
}
