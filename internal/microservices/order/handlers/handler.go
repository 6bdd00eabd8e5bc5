package handlers

import (
	"context"
	"time"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/domain"
)

// Gateway is the persistence surface the API serves.
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

// Provisioner is implemented by gateways that can create their own schema.
type Provisioner interface {
	EnsureSchema(ctx context.Context) error
	SeedDemoDishes(ctx context.Context) (bool, error)
}

type Handler struct {
	DishHandler   *DishHandler
	OrderHandler  *OrderHandler
	SystemHandler *SystemHandler
}

func New(gw Gateway, v *validation.Validator, lg *logger.Logger) *Handler {
	return &Handler{
		DishHandler:   NewDishHandler(gw, v, lg),
		OrderHandler:  NewOrderHandler(gw, v, lg),
		SystemHandler: NewSystemHandler(gw, lg),
	}
}
