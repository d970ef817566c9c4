package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// TransactionRepository handles the append-only cash ledger.
type TransactionRepository struct {
	db sqlx.ExtContext
}

const transactionColumns = `id, transaction_type, amount, description, reference_type, reference_id,
	payment_method, staff_id, transaction_date, created_at`

// Create appends a ledger entry. Entries are never updated.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	id, err := insert(ctx, r.db, "insert transaction", `
		INSERT INTO transactions (transaction_type, amount, description, reference_type, reference_id,
			payment_method, staff_id, transaction_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TransactionType, t.Amount, t.Description, t.ReferenceType, t.ReferenceID,
		t.PaymentMethod, t.StaffID, t.TransactionDate, t.CreatedAt)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func ledgerFilter(f models.TransactionFilter) filter {
	var w filter
	if f.Type != "" {
		w.add("transaction_type = ?", f.Type)
	}
	if f.ReferenceType != "" {
		w.add("reference_type = ?", f.ReferenceType)
	}
	if f.From != nil {
		w.add("transaction_date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("transaction_date < ?", *f.To)
	}
	return w
}

// GetAllPaged returns ledger entries matching the filter, newest first.
func (r *TransactionRepository) GetAllPaged(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	w := ledgerFilter(f)
	total, err := count(ctx, r.db, "count transactions", `SELECT COUNT(1) FROM transactions`+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	list := []models.Transaction{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &list, "list transactions",
		`SELECT `+transactionColumns+` FROM transactions`+w.where()+` ORDER BY transaction_date DESC, id DESC LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ByReference lists the entries produced by one document.
func (r *TransactionRepository) ByReference(ctx context.Context, ref models.ReferenceType, id int) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := selectAll(ctx, r.db, &list, "list transactions by reference",
		`SELECT `+transactionColumns+` FROM transactions WHERE reference_type = ? AND reference_id = ? ORDER BY id`, ref, id)
	return list, err
}

// Totals sums income and expense in [from, to).
func (r *TransactionRepository) Totals(ctx context.Context, from, to time.Time) (models.LedgerTotals, error) {
	var t models.LedgerTotals
	err := sqlx.GetContext(ctx, r.db, &t, r.db.Rebind(`
		SELECT
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE 0 END), 0) AS expense
		FROM transactions WHERE transaction_date >= ? AND transaction_date < ?`),
		models.TrxIncome, models.TrxExpense, from, to)
	if err != nil {
		return t, wrapErr("ledger totals", err)
	}
	t.Profit = t.Income - t.Expense
	return t, nil
}

// Breakdown groups [from, to) by direction and reference type.
func (r *TransactionRepository) Breakdown(ctx context.Context, from, to time.Time) ([]models.LedgerBreakdown, error) {
	list := []models.LedgerBreakdown{}
	err := selectAll(ctx, r.db, &list, "ledger breakdown", `
		SELECT transaction_type, reference_type, COUNT(1) AS count, SUM(amount) AS total
		FROM transactions WHERE transaction_date >= ? AND transaction_date < ?
		GROUP BY transaction_type, reference_type
		ORDER BY transaction_type, total DESC`, from, to)
	return list, err
}
