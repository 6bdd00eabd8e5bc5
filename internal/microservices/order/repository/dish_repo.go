package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"orderboard/internal/connections/database"
	"orderboard/internal/domain"
)

const dishColumns = `CAST(id AS TEXT), name, price, description, tags, created_at`

func scanDish(row interface{ Scan(...any) error }) (domain.Dish, error) {
	var d domain.Dish
	err := row.Scan(&d.ID, &d.Name, &d.Price, &d.Description, &d.Tags, database.ScanTime{T: &d.CreatedAt})
	return d, err
}

// ListDishes returns every dish, newest first.
func (r *Repository) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	if err := r.conn(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+dishColumns+` FROM dishes ORDER BY created_at DESC`)
	if err != nil {
		return nil, r.fail("list dishes", err)
	}
	defer rows.Close()

	out := []domain.Dish{}
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, r.fail("scan dish", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list dishes", err)
	}
	return out, nil
}

// CreateDish stores the fields as given and returns the canonical row.
func (r *Repository) CreateDish(ctx context.Context, in domain.DishInput) (domain.Dish, error) {
	if err := r.conn(); err != nil {
		return domain.Dish{}, err
	}
	d := domain.Dish{
		ID:          r.newID(),
		Name:        in.Name,
		Price:       in.Price.Round(2),
		Description: in.Description,
		Tags:        in.Tags,
		CreatedAt:   r.now(),
	}
	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO dishes (id, name, price, description, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), d.ID, d.Name, d.Price, d.Description, d.Tags, r.db.Dialect.Time(d.CreatedAt))
	if err != nil {
		return domain.Dish{}, r.fail("create dish", err)
	}
	return r.getDish(ctx, d.ID)
}

func (r *Repository) UpdateDish(ctx context.Context, id string, in domain.DishInput) (domain.Dish, error) {
	if err := r.conn(); err != nil {
		return domain.Dish{}, err
	}
	if !validID(id) {
		return domain.Dish{}, notFound("dish", id)
	}
	res, err := r.db.ExecContext(ctx, r.q(`
		UPDATE dishes SET name = ?, price = ?, description = ?, tags = ?
		WHERE id = ?
	`), in.Name, in.Price.Round(2), in.Description, in.Tags, id)
	if err != nil {
		return domain.Dish{}, r.fail("update dish", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Dish{}, notFound("dish", id)
	}
	return r.getDish(ctx, id)
}

// DeleteDish removes the dish; its order lines go with it. Missing ids are not an error.
func (r *Repository) DeleteDish(ctx context.Context, id string) error {
	if err := r.conn(); err != nil {
		return err
	}
	if !validID(id) {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM dishes WHERE id = ?`), id); err != nil {
		return r.fail("delete dish", err)
	}
	return nil
}

func (r *Repository) ClearAllDishes(ctx context.Context) error {
	if err := r.conn(); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dishes`); err != nil {
		return r.fail("clear dishes", err)
	}
	return nil
}

func (r *Repository) getDish(ctx context.Context, id string) (domain.Dish, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+dishColumns+` FROM dishes WHERE id = ?`), id)
	d, err := scanDish(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Dish{}, notFound("dish", id)
	}
	if err != nil {
		return domain.Dish{}, r.fail("get dish", err)
	}
	return d, nil
}

var demoDishes = []domain.DishInput{
	{Name: "Margherita", Price: decimal.RequireFromString("7.50"), Description: "Tomate, Mozzarella, Basilikum", Tags: "vegetarisch"},
	{Name: "Spaghetti Bolognese", Price: decimal.RequireFromString("9.90"), Description: "Hausgemachte Soße"},
	{Name: "Rotes Thai Curry", Price: decimal.RequireFromString("11.50"), Description: "Mit Gemüse & Kokos", Tags: "scharf,vegan"},
}

// SeedDemoDishes fills an empty catalog with the demo dishes and reports whether it did.
func (r *Repository) SeedDemoDishes(ctx context.Context) (bool, error) {
	if err := r.conn(); err != nil {
		return false, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dishes`).Scan(&n); err != nil {
		return false, r.fail("count dishes", err)
	}
	if n > 0 {
		return false, nil
	}
	for _, in := range demoDishes {
		if _, err := r.CreateDish(ctx, in); err != nil {
			return false, err
		}
	}
	return true, nil
}
