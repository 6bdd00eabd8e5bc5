package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// Publisher is the part of the rabbitmq client the notifier needs.
type Publisher interface {
	Ping() error
	DeclareFanout(name string) error
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table, contentType string, persistent bool) error
}

// AMQPNotifier fans notifications out to every subscriber of an exchange.
// Permission is granted once the broker answers and the exchange is declared.
type AMQPNotifier struct {
	pub      Publisher
	exchange string
	log      *logger.Logger

	mu   sync.Mutex
	perm domain.Permission
}

func NewAMQPNotifier(pub Publisher, exchange string, lg *logger.Logger) *AMQPNotifier {
	return &AMQPNotifier{pub: pub, exchange: exchange, log: lg, perm: domain.PermissionDefault}
}

func (n *AMQPNotifier) Permission() domain.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.perm
}

func (n *AMQPNotifier) RequestPermission(context.Context) domain.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.perm != domain.PermissionDefault {
		return n.perm
	}
	if err := n.pub.Ping(); err != nil {
		n.log.Error("notify_broker_unavailable", err, map[string]any{"exchange": n.exchange})
		n.perm = domain.PermissionDenied
		return n.perm
	}
	if err := n.pub.DeclareFanout(n.exchange); err != nil {
		n.log.Error("notify_exchange_declare_failed", err, map[string]any{"exchange": n.exchange})
		n.perm = domain.PermissionDenied
		return n.perm
	}
	n.perm = domain.PermissionGranted
	return n.perm
}

func (n *AMQPNotifier) Notify(ctx context.Context, note domain.OrderNotification) error {
	body, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	headers := amqp.Table{"order_id": note.OrderID}
	if err := n.pub.Publish(ctx, n.exchange, "", body, headers, "application/json", true); err != nil {
		return fmt.Errorf("publish notification %s: %w", note.OrderID, err)
	}
	n.log.Debug("notification_published", map[string]any{"order_id": note.OrderID, "exchange": n.exchange})
	return nil
}
