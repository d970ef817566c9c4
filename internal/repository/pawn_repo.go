package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// PawnRepository handles data access for pawn contracts and their payments.
type PawnRepository struct {
	db sqlx.ExtContext
}

const pawnColumns = `
	p.id, p.contract_number, p.customer_id, p.staff_id, p.item_description, p.imei, p.item_value,
	p.loan_amount, p.interest_rate, p.contract_date, p.due_date, p.status, p.payments_made,
	p.total_interest, p.interest_credit, p.renewal_count, p.closed_at, p.notes, p.created_at, p.updated_at,
	c.name AS customer_name`

const pawnFrom = ` FROM pawn_contracts p JOIN customers c ON c.id = p.customer_id`

// NumberExists reports whether a contract number is taken.
func (r *PawnRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	return exists(ctx, r.db, "check contract number", `SELECT COUNT(1) FROM pawn_contracts WHERE contract_number = ?`, number)
}

func (r *PawnRepository) GetByID(ctx context.Context, id int) (*models.PawnContract, error) {
	var c models.PawnContract
	if err := getOne(ctx, r.db, &c, "pawn contract", fmt.Sprintf("#%d", id),
		`SELECT`+pawnColumns+pawnFrom+` WHERE p.id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PawnRepository) GetByNumber(ctx context.Context, number string) (*models.PawnContract, error) {
	var c models.PawnContract
	if err := getOne(ctx, r.db, &c, "pawn contract", number,
		`SELECT`+pawnColumns+pawnFrom+` WHERE p.contract_number = ?`, number); err != nil {
		return nil, err
	}
	return &c, nil
}

// openStatuses are the stored statuses that still accrue interest.
var openStatuses = []any{models.PawnActive, models.PawnExtended}

// pawnStatus adds the clause selecting contracts whose effective status on
// today is status.
func pawnStatus(w *filter, status models.PawnStatus, today time.Time) {
	switch status {
	case models.PawnOverdue:
		w.add("p.status IN (?, ?) AND p.due_date < ?", append(openStatuses, today)...)
	case models.PawnActive, models.PawnExtended:
		w.add("p.status = ? AND p.due_date >= ?", status, today)
	case "":
	default:
		w.add("p.status = ?", status)
	}
}

// GetAllPaged returns contracts matching the filter. The status filter is
// evaluated against the effective status on today.
func (r *PawnRepository) GetAllPaged(ctx context.Context, f models.PawnFilter, today time.Time) ([]models.PawnContract, int, error) {
	var w filter
	pawnStatus(&w, f.Status, today)
	w.search(f.Search, "p.contract_number", "p.item_description", "COALESCE(p.imei, '')", "c.name", "COALESCE(c.phone, '')")

	total, err := count(ctx, r.db, "count pawn contracts", `SELECT COUNT(1)`+pawnFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	list := []models.PawnContract{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &list, "list pawn contracts",
		`SELECT`+pawnColumns+pawnFrom+w.where()+` ORDER BY p.due_date, p.id LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// All returns every contract. Reports compute effective statuses from it.
func (r *PawnRepository) All(ctx context.Context) ([]models.PawnContract, error) {
	list := []models.PawnContract{}
	err := selectAll(ctx, r.db, &list, "list pawn contracts", `SELECT`+pawnColumns+pawnFrom+` ORDER BY p.id`)
	return list, err
}

// CountOverdue counts open contracts past their due date on today.
func (r *PawnRepository) CountOverdue(ctx context.Context, today time.Time) (int, error) {
	return count(ctx, r.db, "count overdue contracts",
		`SELECT COUNT(1) FROM pawn_contracts WHERE status IN (?, ?) AND due_date < ?`, append(openStatuses, today)...)
}

func (r *PawnRepository) Create(ctx context.Context, c *models.PawnContract) error {
	id, err := insert(ctx, r.db, "insert pawn contract", `
		INSERT INTO pawn_contracts (contract_number, customer_id, staff_id, item_description, imei, item_value,
			loan_amount, interest_rate, contract_date, due_date, status, payments_made, total_interest,
			interest_credit, renewal_count, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ContractNumber, c.CustomerID, c.StaffID, c.ItemDescription, c.IMEI, c.ItemValue,
		c.LoanAmount, c.InterestRate, c.ContractDate, c.DueDate, c.Status, c.PaymentsMade, c.TotalInterest,
		c.InterestCredit, c.RenewalCount, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Update saves the lifecycle fields of a contract.
func (r *PawnRepository) Update(ctx context.Context, c *models.PawnContract) error {
	return execOne(ctx, r.db, "pawn contract", c.ID, `
		UPDATE pawn_contracts
		SET status = ?, due_date = ?, payments_made = ?, total_interest = ?, interest_credit = ?,
			renewal_count = ?, closed_at = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		c.Status, c.DueDate, c.PaymentsMade, c.TotalInterest, c.InterestCredit, c.RenewalCount,
		c.ClosedAt, c.Notes, c.UpdatedAt, c.ID)
}

func (r *PawnRepository) AddPayment(ctx context.Context, p *models.PawnPayment) error {
	id, err := insert(ctx, r.db, "insert pawn payment", `
		INSERT INTO pawn_payments (contract_id, payment_type, amount, interest_amount, principal_amount,
			payment_date, staff_id, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ContractID, p.PaymentType, p.Amount, p.InterestAmount, p.PrincipalAmount,
		p.PaymentDate, p.StaffID, p.Notes)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *PawnRepository) Payments(ctx context.Context, contractID int) ([]models.PawnPayment, error) {
	list := []models.PawnPayment{}
	err := selectAll(ctx, r.db, &list, "list pawn payments", `
		SELECT id, contract_id, payment_type, amount, interest_amount, principal_amount, payment_date, staff_id, notes
		FROM pawn_payments WHERE contract_id = ? ORDER BY payment_date, id`, contractID)
	return list, err
}
