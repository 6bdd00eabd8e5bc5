package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"open", "in_progress", "done", " done "} {
		if _, err := ParseStatus(s); err != nil {
			t.Fatalf("ParseStatus(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "cooking", "DONE", "ready"} {
		_, err := ParseStatus(s)
		if err == nil {
			t.Fatalf("ParseStatus(%q): expected error", s)
		}
		if !IsValidation(err) {
			t.Fatalf("ParseStatus(%q): expected validation error, got %T", s, err)
		}
	}
}

func TestOrderTotalAndNames(t *testing.T) {
	o := Order{
		CustomerName: "Max",
		Lines: []OrderLine{
			{DishName: "Margherita", PriceSnapshot: decimal.RequireFromString("7.5")},
			{DishName: "Rotes Thai Curry", PriceSnapshot: decimal.RequireFromString("11.50")},
		},
	}
	if got := FormatMoney(o.Total()); got != "19.00" {
		t.Fatalf("total: got %s", got)
	}
	if got := o.DishNames(); got != "Margherita, Rotes Thai Curry" {
		t.Fatalf("names: got %q", got)
	}
	if got := FormatMoney(decimal.RequireFromString("7.5")); got != "7.50" {
		t.Fatalf("format: got %s", got)
	}
}

func TestOrderCloneIsDeep(t *testing.T) {
	o := Order{ID: "a", Lines: []OrderLine{{DishName: "x"}}}
	cp := o.Clone()
	cp.Lines[0].DishName = "y"
	if o.Lines[0].DishName != "x" {
		t.Fatalf("clone shares lines")
	}
}

func TestNewOrderNotification(t *testing.T) {
	o := Order{ID: "o1", CustomerName: "Max", Lines: []OrderLine{{DishName: "Margherita"}, {DishName: "Spaghetti Bolognese"}}}
	n := NewOrderNotification(o, time.Unix(0, 0))
	if n.Dishes != "Margherita, Spaghetti Bolognese" {
		t.Fatalf("dishes: %q", n.Dishes)
	}
	if n.Body != "From: Max\nDishes: Margherita, Spaghetti Bolognese" {
		t.Fatalf("body: %q", n.Body)
	}
	if n.Title != NewOrderTitle {
		t.Fatalf("title: %q", n.Title)
	}
}

func TestBulkErrorUnwrap(t *testing.T) {
	be := &BulkError{Op: "clear_done_orders", Failed: map[string]error{
		"b": ErrStoreUnavailable,
		"a": ErrNotFound,
	}}
	if !errors.Is(be, ErrStoreUnavailable) || !errors.Is(be, ErrNotFound) {
		t.Fatalf("expected wrapped causes")
	}
	ids := be.FailedIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids: %v", ids)
	}
}
