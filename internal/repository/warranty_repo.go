package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// WarrantyRepository handles data access for warranties.
type WarrantyRepository struct {
	db sqlx.ExtContext
}

const warrantyColumns = `
	w.id, w.warranty_number, w.lookup_token, w.sale_id, w.repair_id, w.product_id, w.customer_id,
	w.imei, w.product_name, w.warranty_type, w.warranty_months, w.start_date, w.end_date, w.status,
	w.claim_notes, w.created_at, w.updated_at, c.name AS customer_name`

const warrantyFrom = ` FROM warranties w LEFT JOIN customers c ON c.id = w.customer_id`

// NumberExists reports whether a warranty number is taken.
func (r *WarrantyRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	return exists(ctx, r.db, "check warranty number", `SELECT COUNT(1) FROM warranties WHERE warranty_number = ?`, number)
}

func (r *WarrantyRepository) GetByID(ctx context.Context, id int) (*models.Warranty, error) {
	var w models.Warranty
	if err := getOne(ctx, r.db, &w, "warranty", fmt.Sprintf("#%d", id),
		`SELECT`+warrantyColumns+warrantyFrom+` WHERE w.id = ?`, id); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WarrantyRepository) GetByNumber(ctx context.Context, number string) (*models.Warranty, error) {
	var w models.Warranty
	if err := getOne(ctx, r.db, &w, "warranty", number,
		`SELECT`+warrantyColumns+warrantyFrom+` WHERE w.warranty_number = ?`, number); err != nil {
		return nil, err
	}
	return &w, nil
}

// LatestByIMEI returns the most recently issued warranty for an IMEI.
func (r *WarrantyRepository) LatestByIMEI(ctx context.Context, imei string) (*models.Warranty, error) {
	var w models.Warranty
	if err := getOne(ctx, r.db, &w, "warranty", "imei "+imei,
		`SELECT`+warrantyColumns+warrantyFrom+` WHERE w.imei = ? ORDER BY w.start_date DESC, w.id DESC LIMIT 1`, imei); err != nil {
		return nil, err
	}
	return &w, nil
}

// BySale lists the warranties issued by one sale.
func (r *WarrantyRepository) BySale(ctx context.Context, saleID int) ([]models.Warranty, error) {
	list := []models.Warranty{}
	err := selectAll(ctx, r.db, &list, "list sale warranties",
		`SELECT`+warrantyColumns+warrantyFrom+` WHERE w.sale_id = ? ORDER BY w.id`, saleID)
	return list, err
}

// effectiveStatus adds the clause selecting warranties whose effective status
// on today is status.
func effectiveStatus(w *filter, status models.WarrantyStatus, today time.Time) {
	switch status {
	case models.WarrantyActive:
		w.add("w.status = ? AND w.end_date >= ?", models.WarrantyActive, today)
	case models.WarrantyExpired:
		w.add("(w.status = ? OR (w.status = ? AND w.end_date < ?))", models.WarrantyExpired, models.WarrantyActive, today)
	case "":
	default:
		w.add("w.status = ?", status)
	}
}

// GetAllPaged returns warranties matching the filter. The status filter is
// evaluated against the effective status on today.
func (r *WarrantyRepository) GetAllPaged(ctx context.Context, f models.WarrantyFilter, today time.Time) ([]models.Warranty, int, error) {
	var w filter
	effectiveStatus(&w, f.Status, today)
	if f.Type != "" {
		w.add("w.warranty_type = ?", f.Type)
	}
	w.search(f.Search, "w.warranty_number", "COALESCE(w.imei, '')", "w.product_name", "COALESCE(c.name, '')")

	total, err := count(ctx, r.db, "count warranties", `SELECT COUNT(1)`+warrantyFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	list := []models.Warranty{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &list, "list warranties",
		`SELECT`+warrantyColumns+warrantyFrom+w.where()+` ORDER BY w.end_date, w.id LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Expiring lists stored-active warranties ending within [today, until].
func (r *WarrantyRepository) Expiring(ctx context.Context, today, until time.Time) ([]models.Warranty, error) {
	list := []models.Warranty{}
	err := selectAll(ctx, r.db, &list, "expiring warranties",
		`SELECT`+warrantyColumns+warrantyFrom+`
		WHERE w.status = ? AND w.end_date >= ? AND w.end_date <= ?
		ORDER BY w.end_date, w.id`, models.WarrantyActive, today, until)
	return list, err
}

func (r *WarrantyRepository) Create(ctx context.Context, w *models.Warranty) error {
	id, err := insert(ctx, r.db, "insert warranty", `
		INSERT INTO warranties (warranty_number, lookup_token, sale_id, repair_id, product_id, customer_id,
			imei, product_name, warranty_type, warranty_months, start_date, end_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.WarrantyNumber, w.LookupToken, w.SaleID, w.RepairID, w.ProductID, w.CustomerID,
		w.IMEI, w.ProductName, w.WarrantyType, w.WarrantyMonths, w.StartDate, w.EndDate, w.Status, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

// UpdateStatus stores a claim or void.
func (r *WarrantyRepository) UpdateStatus(ctx context.Context, w *models.Warranty) error {
	return execOne(ctx, r.db, "warranty", w.ID,
		`UPDATE warranties SET status = ?, claim_notes = ?, updated_at = ? WHERE id = ?`,
		w.Status, w.ClaimNotes, w.UpdatedAt, w.ID)
}
