package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// CategoryRepository handles data access for product categories.
type CategoryRepository struct {
	db sqlx.ExtContext
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	if err := getOne(ctx, r.db, &c, "category", fmt.Sprintf("#%d", id),
		`SELECT id, name, description, is_active, created_at FROM categories WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := selectAll(ctx, r.db, &categories, "list categories",
		`SELECT id, name, description, is_active, created_at FROM categories ORDER BY name`)
	return categories, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	id, err := insert(ctx, r.db, "insert category",
		`INSERT INTO categories (name, description, is_active, created_at) VALUES (?, ?, ?, ?)`,
		c.Name, c.Description, c.IsActive, c.CreatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	return execOne(ctx, r.db, "category", c.ID,
		`UPDATE categories SET name = ?, description = ?, is_active = ? WHERE id = ?`,
		c.Name, c.Description, c.IsActive, c.ID)
}
