package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

// InventoryRepository handles data access for physical stock units.
type InventoryRepository struct {
	db sqlx.ExtContext
}

const unitColumns = `
	u.id, u.product_id, u.supplier_id, u.imei, u.serial_number, u.condition, u.status,
	u.cost_price, u.selling_price, u.location, u.purchase_date, u.notes, u.created_at, u.updated_at,
	p.name AS product_name`

const unitFrom = ` FROM inventory_units u JOIN products p ON p.id = u.product_id`

func (r *InventoryRepository) GetByID(ctx context.Context, id int) (*models.InventoryUnit, error) {
	var u models.InventoryUnit
	if err := getOne(ctx, r.db, &u, "inventory unit", fmt.Sprintf("#%d", id),
		`SELECT`+unitColumns+unitFrom+` WHERE u.id = ?`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIMEI finds the unit carrying an IMEI, whatever its status.
func (r *InventoryRepository) GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	var u models.InventoryUnit
	if err := getOne(ctx, r.db, &u, "inventory unit", "imei "+imei,
		`SELECT`+unitColumns+unitFrom+` WHERE u.imei = ?`, imei); err != nil {
		return nil, err
	}
	return &u, nil
}

// IMEIExists checks the full unit history, sold and damaged units included.
func (r *InventoryRepository) IMEIExists(ctx context.Context, imei string) (bool, error) {
	return exists(ctx, r.db, "check imei", `SELECT COUNT(1) FROM inventory_units WHERE imei = ?`, imei)
}

// GetAllPaged returns units matching the filter and the total count.
func (r *InventoryRepository) GetAllPaged(ctx context.Context, f models.UnitFilter) ([]models.InventoryUnit, int, error) {
	var w filter
	if f.ProductID > 0 {
		w.add("u.product_id = ?", f.ProductID)
	}
	if f.Status != "" {
		w.add("u.status = ?", f.Status)
	}
	w.search(f.Search, "COALESCE(u.imei, '')", "COALESCE(u.serial_number, '')", "p.name")

	total, err := count(ctx, r.db, "count units", `SELECT COUNT(1)`+unitFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	units := []models.InventoryUnit{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &units, "list units",
		`SELECT`+unitColumns+unitFrom+w.where()+` ORDER BY u.id DESC LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return units, total, nil
}

// Create inserts a unit. A duplicate IMEI surfaces as rules.DuplicateKeyError.
func (r *InventoryRepository) Create(ctx context.Context, u *models.InventoryUnit) error {
	id, err := insert(ctx, r.db, "insert inventory unit", `
		INSERT INTO inventory_units (product_id, supplier_id, imei, serial_number, condition, status,
			cost_price, selling_price, location, purchase_date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ProductID, u.SupplierID, u.IMEI, u.SerialNumber, u.Condition, u.Status,
		u.CostPrice, u.SellingPrice, u.Location, u.PurchaseDate, u.Notes, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var dup *rules.DuplicateKeyError
		if errors.As(err, &dup) && u.IMEI != nil {
			dup.Key, dup.Value = "imei", *u.IMEI
		}
		return err
	}
	u.ID = id
	return nil
}

// UpdateStatus moves a unit from one status to another. The update only
// applies while the unit is still in the expected status, so a concurrent
// change surfaces as an illegal transition instead of being overwritten.
func (r *InventoryRepository) UpdateStatus(ctx context.Context, id int, from, to models.UnitStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE inventory_units SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		to, at, id, from)
	if err != nil {
		return wrapErr("update unit status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("update unit status", err)
	}
	if n == 0 {
		return &rules.IllegalTransitionError{
			Entity: fmt.Sprintf("inventory unit %d", id),
			From:   string(from),
			To:     string(to),
			Reason: "unit status changed concurrently",
		}
	}
	return nil
}

// OldestAvailable returns up to n available units of a product without an
// IMEI, oldest first.
func (r *InventoryRepository) OldestAvailable(ctx context.Context, productID, n int) ([]models.InventoryUnit, error) {
	units := []models.InventoryUnit{}
	err := selectAll(ctx, r.db, &units, "allocate units",
		`SELECT`+unitColumns+unitFrom+`
		WHERE u.product_id = ? AND u.status = ? AND u.imei IS NULL
		ORDER BY u.purchase_date, u.id LIMIT ?`,
		productID, models.UnitAvailable, n)
	return units, err
}

// CountAvailable is the number of units of a product on the shelf.
func (r *InventoryRepository) CountAvailable(ctx context.Context, productID int) (int, error) {
	return count(ctx, r.db, "count available",
		`SELECT COUNT(1) FROM inventory_units WHERE product_id = ? AND status = ?`, productID, models.UnitAvailable)
}
