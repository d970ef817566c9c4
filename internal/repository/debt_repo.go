package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// DebtRepository handles data access for receivables and payables.
type DebtRepository struct {
	db sqlx.ExtContext
}

const debtColumns = `
	d.id, d.debtor_type, d.debtor_id, d.amount, d.paid_amount, d.description, d.reference_type,
	d.reference_id, d.due_date, d.status, d.settled_at, d.created_at, d.updated_at,
	COALESCE(c.name, s.name, '') AS debtor_name`

const debtFrom = ` FROM debts d
	LEFT JOIN customers c ON d.debtor_type = 'customer' AND c.id = d.debtor_id
	LEFT JOIN suppliers s ON d.debtor_type = 'supplier' AND s.id = d.debtor_id`

func (r *DebtRepository) GetByID(ctx context.Context, id int) (*models.Debt, error) {
	var d models.Debt
	if err := getOne(ctx, r.db, &d, "debt", fmt.Sprintf("#%d", id),
		`SELECT`+debtColumns+debtFrom+` WHERE d.id = ?`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// ByReference lists debts produced by one document.
func (r *DebtRepository) ByReference(ctx context.Context, ref models.ReferenceType, id int) ([]models.Debt, error) {
	list := []models.Debt{}
	err := selectAll(ctx, r.db, &list, "list debts by reference",
		`SELECT`+debtColumns+debtFrom+` WHERE d.reference_type = ? AND d.reference_id = ? ORDER BY d.id`, ref, id)
	return list, err
}

func (r *DebtRepository) GetAllPaged(ctx context.Context, f models.DebtFilter) ([]models.Debt, int, error) {
	var w filter
	if f.DebtorType != "" {
		w.add("d.debtor_type = ?", f.DebtorType)
	}
	if f.DebtorID > 0 {
		w.add("d.debtor_id = ?", f.DebtorID)
	}
	if f.Status != "" {
		w.add("d.status = ?", f.Status)
	}

	total, err := count(ctx, r.db, "count debts", `SELECT COUNT(1)`+debtFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	list := []models.Debt{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &list, "list debts",
		`SELECT`+debtColumns+debtFrom+w.where()+` ORDER BY d.due_date, d.id LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *DebtRepository) Create(ctx context.Context, d *models.Debt) error {
	id, err := insert(ctx, r.db, "insert debt", `
		INSERT INTO debts (debtor_type, debtor_id, amount, paid_amount, description, reference_type,
			reference_id, due_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DebtorType, d.DebtorID, d.Amount, d.PaidAmount, d.Description, d.ReferenceType,
		d.ReferenceID, d.DueDate, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// UpdatePayment stores the paid amount and status after a settlement.
func (r *DebtRepository) UpdatePayment(ctx context.Context, d *models.Debt) error {
	return execOne(ctx, r.db, "debt", d.ID,
		`UPDATE debts SET paid_amount = ?, status = ?, settled_at = ?, updated_at = ? WHERE id = ?`,
		d.PaidAmount, d.Status, d.SettledAt, d.UpdatedAt, d.ID)
}

// CustomerBalances sums outstanding customer debts per customer, largest first.
func (r *DebtRepository) CustomerBalances(ctx context.Context) ([]models.CustomerDebt, error) {
	list := []models.CustomerDebt{}
	err := selectAll(ctx, r.db, &list, "customer balances", `
		SELECT c.id AS customer_id, c.name, c.phone, COUNT(d.id) AS debt_count,
			SUM(d.amount - d.paid_amount) AS outstanding
		FROM debts d JOIN customers c ON c.id = d.debtor_id
		WHERE d.debtor_type = ? AND d.status = ?
		GROUP BY c.id, c.name, c.phone
		ORDER BY outstanding DESC`, models.DebtorCustomer, models.DebtOutstanding)
	return list, err
}
