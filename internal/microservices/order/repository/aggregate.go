package repository

import "orderboard/internal/domain"

// Aggregate attaches lines to their orders. Lines keep the order they arrive
// in, and an order without lines gets an empty slice. Inputs are not modified.
func Aggregate(orders []domain.Order, lines []domain.OrderLine) []domain.Order {
	byOrder := make(map[string][]domain.OrderLine, len(orders))
	for _, o := range orders {
		byOrder[o.ID] = []domain.OrderLine{}
	}
	for _, l := range lines {
		if _, ok := byOrder[l.OrderID]; !ok {
			continue
		}
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}

	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		o.Lines = byOrder[o.ID]
		out[i] = o
	}
	return out
}
