package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// CustomerRepository handles data access for customers.
type CustomerRepository struct {
	db sqlx.ExtContext
}

const customerColumns = `id, name, phone, email, address, id_number, debt_limit, notes, is_active, created_at, updated_at`

func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	var c models.Customer
	if err := getOne(ctx, r.db, &c, "customer", fmt.Sprintf("#%d", id),
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetAllPaged returns customers matching search on name, phone or id number.
func (r *CustomerRepository) GetAllPaged(ctx context.Context, search string, p, limit int) ([]models.Customer, int, error) {
	var w filter
	w.search(search, "name", "COALESCE(phone, '')", "COALESCE(id_number, '')")

	total, err := count(ctx, r.db, "count customers", `SELECT COUNT(1) FROM customers`+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	lim, offset := page(p, limit)
	customers := []models.Customer{}
	args := append(append([]any{}, w.args...), lim, offset)
	if err := selectAll(ctx, r.db, &customers, "list customers",
		`SELECT `+customerColumns+` FROM customers`+w.where()+` ORDER BY name LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	id, err := insert(ctx, r.db, "insert customer", `
		INSERT INTO customers (name, phone, email, address, id_number, debt_limit, notes, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Address, c.IDNumber, c.DebtLimit, c.Notes, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	return execOne(ctx, r.db, "customer", c.ID, `
		UPDATE customers
		SET name = ?, phone = ?, email = ?, address = ?, id_number = ?, debt_limit = ?, notes = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Email, c.Address, c.IDNumber, c.DebtLimit, c.Notes, c.IsActive, c.UpdatedAt, c.ID)
}
