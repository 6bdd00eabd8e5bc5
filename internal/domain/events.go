package domain

import (
	"fmt"
	"time"
)

const NewOrderTitle = "New order received"

// Permission mirrors the three states of a notification permission prompt.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// OrderNotification is emitted once per newly arrived order.
type OrderNotification struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Dishes       string    `json:"dishes"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewOrderNotification(o Order, at time.Time) OrderNotification {
	dishes := o.DishNames()
	return OrderNotification{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Dishes:       dishes,
		Title:        NewOrderTitle,
		Body:         fmt.Sprintf("From: %s\nDishes: %s", o.CustomerName, dishes),
		Timestamp:    at.UTC(),
	}
}
