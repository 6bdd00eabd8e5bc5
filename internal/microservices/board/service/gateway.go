package service

import (
	"context"
	"time"

	"orderboard/internal/domain"
)

// Gateway is the persistence surface the board reconciles against.
// The SQL repository and the HTTP remote client both satisfy it.
type Gateway interface {
	ListDishes(ctx context.Context) ([]domain.Dish, error)
	CreateDish(ctx context.Context, in domain.DishInput) (domain.Dish, error)
	UpdateDish(ctx context.Context, id string, in domain.DishInput) (domain.Dish, error)
	DeleteDish(ctx context.Context, id string) error
	ClearAllDishes(ctx context.Context) error

	ListOrders(ctx context.Context, window time.Duration) ([]domain.Order, error)
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error)
	SetOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ClearDoneOrders(ctx context.Context) error
	ClearAllOrders(ctx context.Context) error
}

// Notifier is a notification sink with a permission prompt.
type Notifier interface {
	Permission() domain.Permission
	// RequestPermission prompts once and returns the resulting state.
	RequestPermission(ctx context.Context) domain.Permission
	Notify(ctx context.Context, n domain.OrderNotification) error
}
