package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

// DebtService tracks receivables and payables and their settlement.
type DebtService struct {
	store   *repository.Store
	clock   rules.Clock
	dueDays int
}

// NewDebtService constructs a DebtService.
func NewDebtService(store *repository.Store, clock rules.Clock, dueDays int) *DebtService {
	return &DebtService{store: store, clock: clock, dueDays: dueDays}
}

// CreateDebtRequest records a debt outside of a sale or stock receipt.
type CreateDebtRequest struct {
	DebtorType  models.DebtorType `json:"debtorType" binding:"required"`
	DebtorID    int               `json:"debtorId" binding:"required"`
	Amount      int64             `json:"amount" binding:"required"`
	Description string            `json:"description" binding:"required"`
	DueDate     *time.Time        `json:"dueDate"`
}

// SettleDebtRequest is a payment against a debt.
type SettleDebtRequest struct {
	Amount        int64                `json:"amount" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// openDebt stores a new outstanding debt inside the caller's unit of work.
func openDebt(ctx context.Context, tx *repository.Store, now time.Time, d *models.Debt) error {
	if d.Amount <= 0 {
		return rules.Invalid("amount", "must be > 0")
	}
	stamp := rules.StampOf(now)
	d.PaidAmount = 0
	d.Status = models.DebtOutstanding
	d.DueDate = rules.DateOf(d.DueDate)
	d.CreatedAt = stamp
	d.UpdatedAt = stamp
	return tx.Debts.Create(ctx, d)
}

// Create records a manual debt for a customer or a supplier.
func (s *DebtService) Create(ctx context.Context, actor models.Actor, req *CreateDebtRequest) (*models.Debt, error) {
	now := s.clock.Now()
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, rules.Invalid("description", "is required")
	}
	due := rules.AddDays(rules.DateOf(now), s.dueDays)
	if req.DueDate != nil {
		due = rules.DateOf(*req.DueDate)
	}

	d := &models.Debt{
		DebtorType:    req.DebtorType,
		DebtorID:      req.DebtorID,
		Amount:        req.Amount,
		Description:   desc,
		ReferenceType: models.RefManual,
		DueDate:       due,
	}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		switch req.DebtorType {
		case models.DebtorCustomer:
			c, err := tx.Customers.GetByID(ctx, req.DebtorID)
			if err != nil {
				return err
			}
			d.DebtorName = c.Name
		case models.DebtorSupplier:
			sup, err := tx.Suppliers.GetByID(ctx, req.DebtorID)
			if err != nil {
				return err
			}
			d.DebtorName = sup.Name
		default:
			return rules.Invalid("debtor_type", "must be customer or supplier")
		}
		return openDebt(ctx, tx, now, d)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("debt_id", d.ID).
		Str("debtor_type", string(d.DebtorType)).
		Int64("amount", d.Amount).
		Int("staff_id", actor.StaffID).
		Msg("Debt recorded")
	return d, nil
}

// Settle applies a payment to a debt. Collecting from a customer is income,
// paying a supplier is an expense. When the debt came from a sale, the sale's
// paid amount and payment status follow.
func (s *DebtService) Settle(ctx context.Context, actor models.Actor, id int, req *SettleDebtRequest) (*models.Debt, error) {
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	stamp := rules.StampOf(now)

	var debt *models.Debt
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		d, err := tx.Debts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := rules.SettleDebt(d, req.Amount, now); err != nil {
			return err
		}
		d.UpdatedAt = stamp
		if err := tx.Debts.UpdatePayment(ctx, d); err != nil {
			return err
		}

		if err := appendLedger(ctx, tx, &models.Transaction{
			TransactionType: rules.DebtLedgerType(d),
			Amount:          req.Amount,
			Description:     fmt.Sprintf("Debt payment #%d: %s", d.ID, d.Description),
			ReferenceType:   models.RefDebt,
			ReferenceID:     ref(d.ID),
			PaymentMethod:   method,
			StaffID:         staffRef(actor),
			TransactionDate: stamp,
			CreatedAt:       stamp,
		}); err != nil {
			return err
		}

		if d.ReferenceType == models.RefSale && d.ReferenceID != nil {
			sale, err := tx.Sales.GetByID(ctx, *d.ReferenceID)
			if err != nil {
				return err
			}
			paid := sale.PaidAmount + req.Amount
			if paid > sale.TotalAmount {
				paid = sale.TotalAmount
			}
			if err := tx.Sales.UpdatePayment(ctx, sale.ID, paid, rules.PaymentStatusFor(paid, sale.TotalAmount), stamp); err != nil {
				return err
			}
		}
		debt = d
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("debt_id", id).Int64("amount", req.Amount).Msg("Debt settlement rejected")
		return nil, err
	}

	log.Info().
		Int("debt_id", debt.ID).
		Int64("amount", req.Amount).
		Int64("outstanding", debt.Outstanding()).
		Str("status", string(debt.Status)).
		Msg("Debt payment recorded")
	return debt, nil
}

func (s *DebtService) Get(ctx context.Context, id int) (*models.Debt, error) {
	return s.store.Debts.GetByID(ctx, id)
}

func (s *DebtService) List(ctx context.Context, f models.DebtFilter) ([]models.Debt, int, error) {
	return s.store.Debts.GetAllPaged(ctx, f)
}
