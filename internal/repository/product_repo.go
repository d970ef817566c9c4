package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// ProductRepository handles data access for products.
type ProductRepository struct {
	db sqlx.ExtContext
}

const productColumns = `
	p.id, p.category_id, p.name, p.brand, p.model, p.barcode, p.sku, p.description,
	p.cost_price, p.selling_price, p.warranty_months, p.track_imei, p.is_active,
	p.created_at, p.updated_at, c.name AS category_name,
	(SELECT COUNT(1) FROM inventory_units u WHERE u.product_id = p.id AND u.status = 'available') AS available_count`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID int
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

// GetByID returns a single product by id with its available count.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := getOne(ctx, r.db, &p, "product", fmt.Sprintf("#%d", id),
		`SELECT`+productColumns+productFrom+` WHERE p.id = ?`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAllPaged returns products matching the filter and the total count.
func (r *ProductRepository) GetAllPaged(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	var w filter
	if f.CategoryID > 0 {
		w.add("p.category_id = ?", f.CategoryID)
	}
	if f.ActiveOnly {
		w.add("p.is_active = ?", true)
	}
	w.search(f.Search, "p.name", "p.brand", "p.model", "COALESCE(p.barcode, '')", "COALESCE(p.sku, '')")

	total, err := count(ctx, r.db, "count products", `SELECT COUNT(1)`+productFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := page(f.Page, f.Limit)
	products := []models.Product{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &products, "list products",
		`SELECT`+productColumns+productFrom+w.where()+` ORDER BY p.brand, p.name LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create creates a new product.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	id, err := insert(ctx, r.db, "insert product", `
		INSERT INTO products (category_id, name, brand, model, barcode, sku, description,
			cost_price, selling_price, warranty_months, track_imei, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CategoryID, p.Name, p.Brand, p.Model, p.Barcode, p.SKU, p.Description,
		p.CostPrice, p.SellingPrice, p.WarrantyMonths, p.TrackIMEI, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Update updates an existing product. IMEI tracking is fixed at creation.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return execOne(ctx, r.db, "product", p.ID, `
		UPDATE products
		SET category_id = ?, name = ?, brand = ?, model = ?, barcode = ?, sku = ?, description = ?,
			cost_price = ?, selling_price = ?, warranty_months = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.CategoryID, p.Name, p.Brand, p.Model, p.Barcode, p.SKU, p.Description,
		p.CostPrice, p.SellingPrice, p.WarrantyMonths, p.IsActive, p.UpdatedAt, p.ID)
}

// StockLevels returns the available count of every active product, lowest first.
// maxAvailable < 0 returns all products; otherwise only those at or below it.
func (r *ProductRepository) StockLevels(ctx context.Context, maxAvailable int) ([]models.ProductStock, error) {
	q := `
		SELECT p.id AS product_id, p.name, p.brand, p.model, COALESCE(c.name, '') AS category_name,
			p.selling_price,
			COUNT(u.id) AS available_count,
			COALESCE(SUM(u.cost_price), 0) AS stock_value
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN inventory_units u ON u.product_id = p.id AND u.status = 'available'
		WHERE p.is_active = ?
		GROUP BY p.id, p.name, p.brand, p.model, c.name, p.selling_price`
	args := []any{true}
	if maxAvailable >= 0 {
		q += ` HAVING COUNT(u.id) <= ?`
		args = append(args, maxAvailable)
	}
	q += ` ORDER BY available_count, p.name`

	levels := []models.ProductStock{}
	if err := selectAll(ctx, r.db, &levels, "stock levels", q, args...); err != nil {
		return nil, err
	}
	return levels, nil
}
