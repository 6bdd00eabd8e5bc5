package service

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

type Subscription interface {
	Subscribe(ctx context.Context, exchange, consumer string) (<-chan amqp.Delivery, error)
}

// Subscriber logs every order notification published on the exchange.
type Subscriber struct {
	sub      Subscription
	exchange string
	consumer string
	log      *logger.Logger
}

func NewSubscriber(sub Subscription, exchange, consumer string, lg *logger.Logger) *Subscriber {
	return &Subscriber{sub: sub, exchange: exchange, consumer: consumer, log: lg}
}

// Run consumes until ctx is done or the broker closes the delivery channel.
func (s *Subscriber) Run(ctx context.Context) error {
	msgs, err := s.sub.Subscribe(ctx, s.exchange, s.consumer)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.exchange, err)
	}
	s.log.Info("subscriber_started", map[string]any{"exchange": s.exchange})

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", s.exchange)
			}
			s.handle(m)
		}
	}
}

func (s *Subscriber) handle(m amqp.Delivery) {
	var note domain.OrderNotification
	if err := json.Unmarshal(m.Body, &note); err != nil {
		s.log.Warn("notification_malformed", err, map[string]any{"body": string(m.Body)})
		return
	}
	s.log.Info("notification_received", map[string]any{
		"order_id":      note.OrderID,
		"customer_name": note.CustomerName,
		"dishes":        note.Dishes,
		"title":         note.Title,
	})
}
