package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDestination is stored when an order is placed without a destination.
const DefaultDestination = "N/A"

// DefaultOrderWindow bounds the active order view.
const DefaultOrderWindow = 48 * time.Hour

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ParseStatus accepts only the three known statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", s)}}
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

type Dish struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"desc"`
	Tags        string          `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customer_name"`
	Destination  string      `json:"destination"`
	Status       Status      `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	Lines        []OrderLine `json:"dishes"`
}

// OrderLine is one row of the order/dish junction. PriceSnapshot is the price
// captured when the order was placed and is never recomputed.
type OrderLine struct {
	OrderID       string          `json:"-"`
	DishID        string          `json:"id"`
	DishName      string          `json:"name"`
	PriceSnapshot decimal.Decimal `json:"price"`
}

// Total sums the captured line prices.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.PriceSnapshot)
	}
	return total
}

// DishNames joins line names with ", " in line order.
func (o Order) DishNames() string {
	names := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		names = append(names, l.DishName)
	}
	return strings.Join(names, ", ")
}

// Clone returns a deep copy so callers cannot reach into a shared lines slice.
func (o Order) Clone() Order {
	cp := o
	cp.Lines = make([]OrderLine, len(o.Lines))
	copy(cp.Lines, o.Lines)
	return cp
}

// FormatMoney renders a price with two fixed decimals.
func FormatMoney(d decimal.Decimal) string { return d.StringFixed(2) }
