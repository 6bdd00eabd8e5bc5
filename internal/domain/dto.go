package domain

import "github.com/shopspring/decimal"

// DishInput carries the editable dish fields for create and update.
type DishInput struct {
	Name        string          `json:"name" validate:"required,notblank"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Description string          `json:"desc"`
	Tags        string          `json:"tags"`
}

// LineInput is one dish picked by the client. Price is the snapshot to store.
type LineInput struct {
	DishID string          `json:"id" validate:"required"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerName string      `json:"customerName" validate:"required,notblank"`
	Destination  string      `json:"destination"`
	Lines        []LineInput `json:"dishes" validate:"dive"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}
