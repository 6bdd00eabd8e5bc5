package notificator

import (
	"context"
	"fmt"

	"orderboard/internal/common/logger"
	"orderboard/internal/config"
	"orderboard/internal/connections/rabbitmq"
	"orderboard/internal/microservices/notificator/service"
)

// Start runs the notification subscriber until ctx is canceled.
func Start(ctx context.Context, cfg config.RabbitMQConfig, lg *logger.Logger) error {
	client, err := rabbitmq.Dial(rabbitmq.Config{URL: cfg.URL})
	if err != nil {
		return fmt.Errorf("rabbitmq connect: %w", err)
	}
	defer client.Close()

	if err := client.DeclareFanout(cfg.Exchange); err != nil {
		return err
	}
	return service.NewSubscriber(client, cfg.Exchange, "notification-subscriber", lg).Run(ctx)
}
