package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// SaleRepository handles data access for sales and their lines.
type SaleRepository struct {
	db sqlx.ExtContext
}

const saleColumns = `
	s.id, s.invoice_number, s.customer_id, s.staff_id, s.sale_date, s.subtotal, s.discount_amount,
	s.tax_amount, s.total_amount, s.paid_amount, s.payment_method, s.payment_status,
	s.is_installment, s.installment_months, s.monthly_payment, s.notes, s.created_at, s.updated_at,
	c.name AS customer_name, st.full_name AS staff_name`

const saleFrom = ` FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id
	JOIN staff st ON st.id = s.staff_id`

// InvoiceExists reports whether an invoice number is taken.
func (r *SaleRepository) InvoiceExists(ctx context.Context, number string) (bool, error) {
	return exists(ctx, r.db, "check invoice number", `SELECT COUNT(1) FROM sales WHERE invoice_number = ?`, number)
}

func (r *SaleRepository) GetByID(ctx context.Context, id int) (*models.Sale, error) {
	var s models.Sale
	if err := getOne(ctx, r.db, &s, "sale", fmt.Sprintf("#%d", id),
		`SELECT`+saleColumns+saleFrom+` WHERE s.id = ?`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepository) GetByInvoice(ctx context.Context, number string) (*models.Sale, error) {
	var s models.Sale
	if err := getOne(ctx, r.db, &s, "sale", number,
		`SELECT`+saleColumns+saleFrom+` WHERE s.invoice_number = ?`, number); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAllPaged returns sales matching the filter, newest first, and the total count.
func (r *SaleRepository) GetAllPaged(ctx context.Context, f models.SaleFilter) ([]models.Sale, int, error) {
	var w filter
	if f.From != nil {
		w.add("s.sale_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("s.sale_date < ?", *f.To)
	}
	if f.PaymentStatus != "" {
		w.add("s.payment_status = ?", f.PaymentStatus)
	}
	if f.CustomerID > 0 {
		w.add("s.customer_id = ?", f.CustomerID)
	}
	w.search(f.Search, "s.invoice_number", "COALESCE(c.name, '')", "COALESCE(c.phone, '')")

	total, err := count(ctx, r.db, "count sales", `SELECT COUNT(1)`+saleFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	sales := []models.Sale{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &sales, "list sales",
		`SELECT`+saleColumns+saleFrom+w.where()+` ORDER BY s.sale_date DESC, s.id DESC LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	id, err := insert(ctx, r.db, "insert sale", `
		INSERT INTO sales (invoice_number, customer_id, staff_id, sale_date, subtotal, discount_amount,
			tax_amount, total_amount, paid_amount, payment_method, payment_status,
			is_installment, installment_months, monthly_payment, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.InvoiceNumber, s.CustomerID, s.StaffID, s.SaleDate, s.Subtotal, s.DiscountAmount,
		s.TaxAmount, s.TotalAmount, s.PaidAmount, s.PaymentMethod, s.PaymentStatus,
		s.IsInstallment, s.InstallmentMonths, s.MonthlyPayment, s.Notes, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *SaleRepository) CreateItem(ctx context.Context, it *models.SaleItem) error {
	id, err := insert(ctx, r.db, "insert sale item", `
		INSERT INTO sale_items (sale_id, product_id, unit_id, imei, quantity, unit_price,
			discount_amount, total_price, warranty_months)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.SaleID, it.ProductID, it.UnitID, it.IMEI, it.Quantity, it.UnitPrice,
		it.DiscountAmount, it.TotalPrice, it.WarrantyMonths)
	if err != nil {
		return err
	}
	it.ID = id
	return nil
}

func (r *SaleRepository) Items(ctx context.Context, saleID int) ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	err := selectAll(ctx, r.db, &items, "list sale items", `
		SELECT i.id, i.sale_id, i.product_id, i.unit_id, i.imei, i.quantity, i.unit_price,
			i.discount_amount, i.total_price, i.warranty_months, p.name AS product_name
		FROM sale_items i JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = ? ORDER BY i.id`, saleID)
	return items, err
}

// UpdatePayment records a later collection against the sale.
func (r *SaleRepository) UpdatePayment(ctx context.Context, id int, paid int64, status models.PaymentStatus, at time.Time) error {
	return execOne(ctx, r.db, "sale", id,
		`UPDATE sales SET paid_amount = ?, payment_status = ?, updated_at = ? WHERE id = ?`,
		paid, status, at, id)
}

// SalesSummary aggregates sales over a period.
type SalesSummary struct {
	Orders   int   `db:"orders" json:"orders"`
	Revenue  int64 `db:"revenue" json:"revenue"`
	Paid     int64 `db:"paid" json:"paid"`
	Discount int64 `db:"discount" json:"discount"`
	Tax      int64 `db:"tax" json:"tax"`
}

// MethodTotal is revenue per payment method.
type MethodTotal struct {
	PaymentMethod models.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Orders        int                  `db:"orders" json:"orders"`
	Revenue       int64                `db:"revenue" json:"revenue"`
}

// ProductTotal is quantity and revenue per product.
type ProductTotal struct {
	ProductID int    `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Revenue   int64  `db:"revenue" json:"revenue"`
}

// SaleAmount is one sale's instant and total, for bucketing by day.
type SaleAmount struct {
	SaleDate    time.Time `db:"sale_date"`
	TotalAmount int64     `db:"total_amount"`
	PaidAmount  int64     `db:"paid_amount"`
}

// Summary aggregates sales in [from, to).
func (r *SaleRepository) Summary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	var s SalesSummary
	err := sqlx.GetContext(ctx, r.db, &s, r.db.Rebind(`
		SELECT COUNT(1) AS orders,
			COALESCE(SUM(total_amount), 0) AS revenue,
			COALESCE(SUM(paid_amount), 0) AS paid,
			COALESCE(SUM(discount_amount), 0) AS discount,
			COALESCE(SUM(tax_amount), 0) AS tax
		FROM sales WHERE sale_date >= ? AND sale_date < ?`), from, to)
	return s, wrapErr("sales summary", err)
}

// ByPaymentMethod groups sales in [from, to) by payment method.
func (r *SaleRepository) ByPaymentMethod(ctx context.Context, from, to time.Time) ([]MethodTotal, error) {
	totals := []MethodTotal{}
	err := selectAll(ctx, r.db, &totals, "sales by method", `
		SELECT payment_method, COUNT(1) AS orders, COALESCE(SUM(total_amount), 0) AS revenue
		FROM sales WHERE sale_date >= ? AND sale_date < ?
		GROUP BY payment_method ORDER BY revenue DESC`, from, to)
	return totals, err
}

// TopProducts ranks products sold in [from, to) by revenue.
func (r *SaleRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductTotal, error) {
	totals := []ProductTotal{}
	err := selectAll(ctx, r.db, &totals, "top products", `
		SELECT i.product_id, p.name, SUM(i.quantity) AS quantity, SUM(i.total_price) AS revenue
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		JOIN products p ON p.id = i.product_id
		WHERE s.sale_date >= ? AND s.sale_date < ?
		GROUP BY i.product_id, p.name
		ORDER BY revenue DESC, quantity DESC LIMIT ?`, from, to, limit)
	return totals, err
}

// Amounts lists the instant and amounts of each sale in [from, to).
func (r *SaleRepository) Amounts(ctx context.Context, from, to time.Time) ([]SaleAmount, error) {
	amounts := []SaleAmount{}
	err := selectAll(ctx, r.db, &amounts, "sale amounts", `
		SELECT sale_date, total_amount, paid_amount FROM sales
		WHERE sale_date >= ? AND sale_date < ? ORDER BY sale_date`, from, to)
	return amounts, err
}
