package service

import (
	"context"

	"orderboard/internal/common/logger"
	"orderboard/internal/domain"
)

// LogNotifier writes notifications to the structured log. It never asks for
// permission.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(lg *logger.Logger) *LogNotifier { return &LogNotifier{log: lg} }

func (n *LogNotifier) Permission() domain.Permission { return domain.PermissionGranted }

func (n *LogNotifier) RequestPermission(context.Context) domain.Permission {
	return domain.PermissionGranted
}

func (n *LogNotifier) Notify(_ context.Context, note domain.OrderNotification) error {
	n.log.Info("order_notification", map[string]any{
		"order_id":      note.OrderID,
		"customer_name": note.CustomerName,
		"dishes":        note.Dishes,
		"title":         note.Title,
		"body":          note.Body,
	})
	return nil
}
