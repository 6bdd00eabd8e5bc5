package service

import "orderboard/internal/domain"

// NewArrivals returns the orders of current whose id is absent from previous,
// in the order they appear in current. Content changes are not arrivals.
func NewArrivals(previous, current []domain.Order) []domain.Order {
	known := make(map[string]struct{}, len(previous))
	for _, o := range previous {
		known[o.ID] = struct{}{}
	}
	var out []domain.Order
	for _, o := range current {
		if _, ok := known[o.ID]; ok {
			continue
		}
		known[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}
