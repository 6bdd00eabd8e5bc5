package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"orderboard/internal/connections/database"
	"orderboard/internal/domain"
)

const orderColumns = `CAST(id AS TEXT), customer_name, destination, status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(&o.ID, &o.CustomerName, &o.Destination, &status, database.ScanTime{T: &o.CreatedAt})
	o.Status = domain.Status(status)
	return o, err
}

// ListOrders returns orders created within window of now, newest first, with lines.
// Lines are fetched only for the orders that survived the window filter.
func (r *Repository) ListOrders(ctx context.Context, window time.Duration) ([]domain.Order, error) {
	if err := r.conn(); err != nil {
		return nil, err
	}
	if window <= 0 {
		window = domain.DefaultOrderWindow
	}
	cutoff := r.now().Add(-window)

	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE created_at >= ?
		ORDER BY created_at DESC
	`), r.db.Dialect.Time(cutoff))
	if err != nil {
		return nil, r.fail("list orders", err)
	}
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, r.fail("scan order", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, r.fail("list orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := r.linesFor(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	return Aggregate(orders, lines), nil
}

// linesFor joins order_dishes with dishes. Lines whose dish was deleted are
// gone with it through the cascade.
func (r *Repository) linesFor(ctx context.Context, q querier, orderIDs []string) ([]domain.OrderLine, error) {
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx, r.q(`
		SELECT CAST(od.order_id AS TEXT), CAST(d.id AS TEXT), d.name, od.price
		FROM order_dishes od
		JOIN dishes d ON od.dish_id = d.id
		WHERE od.order_id IN (`+database.Placeholders(len(orderIDs))+`)
		ORDER BY od.position
	`), args...)
	if err != nil {
		return nil, r.fail("list order lines", err)
	}
	defer rows.Close()

	lines := []domain.OrderLine{}
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.OrderID, &l.DishID, &l.DishName, &l.PriceSnapshot); err != nil {
			return nil, r.fail("scan order line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list order lines", err)
	}
	return lines, nil
}

// CreateOrder inserts the order row and its lines in one transaction, then
// re-reads the order so dish names come from the catalog. A line pointing at
// a missing dish rolls the whole order back.
func (r *Repository) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if err := r.conn(); err != nil {
		return domain.Order{}, err
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		destination = domain.DefaultDestination
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, r.fail("begin order", err)
	}
	defer func() { _ = tx.Rollback() }()

	orderID := r.newID()
	if _, err := tx.ExecContext(ctx, r.q(`
		INSERT INTO orders (id, customer_name, destination, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), orderID, req.CustomerName, destination, string(domain.StatusOpen), r.db.Dialect.Time(r.now())); err != nil {
		return domain.Order{}, r.fail("insert order", err)
	}

	for i, line := range req.Lines {
		if !validID(line.DishID) {
			return domain.Order{}, notFound("dish", line.DishID)
		}
		if _, err := tx.ExecContext(ctx, r.q(`
			INSERT INTO order_dishes (id, order_id, dish_id, price, position)
			VALUES (?, ?, ?, ?, ?)
		`), r.newID(), orderID, line.DishID, line.Price.Round(2), i); err != nil {
			return domain.Order{}, r.fail(fmt.Sprintf("insert order line %d", i), err)
		}
	}

	o, err := r.readOrder(ctx, tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, r.fail("commit order", err)
	}
	return o, nil
}

// SetOrderStatus stores status as given; callers validate it.
func (r *Repository) SetOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	if err := r.conn(); err != nil {
		return domain.Order{}, err
	}
	if !validID(id) {
		return domain.Order{}, notFound("order", id)
	}
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE orders SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return domain.Order{}, r.fail("update order status", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Order{}, notFound("order", id)
	}
	return r.readOrder(ctx, r.db, id)
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	if err := r.conn(); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM orders WHERE id = ?`), id); err != nil {
		return r.fail("delete order", err)
	}
	return nil
}

func (r *Repository) ClearDoneOrders(ctx context.Context) error {
	if err := r.conn(); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM orders WHERE status = ?`), string(domain.StatusDone)); err != nil {
		return r.fail("clear done orders", err)
	}
	return nil
}

func (r *Repository) ClearAllOrders(ctx context.Context) error {
	if err := r.conn(); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return r.fail("clear orders", err)
	}
	return nil
}

func (r *Repository) readOrder(ctx context.Context, q querier, id string) (domain.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, r.q(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, notFound("order", id)
	}
	if err != nil {
		return domain.Order{}, r.fail("get order", err)
	}
	lines, err := r.linesFor(ctx, q, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	return Aggregate([]domain.Order{o}, lines)[0], nil
}
