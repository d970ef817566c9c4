package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

// LedgerService records manual cash entries and serves the cash dashboard.
type LedgerService struct {
	store *repository.Store
	clock rules.Clock
	loc   *time.Location
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(store *repository.Store, clock rules.Clock, loc *time.Location) *LedgerService {
	return &LedgerService{store: store, clock: clock, loc: loc}
}

// ManualEntryRequest is a cash movement entered by hand.
type ManualEntryRequest struct {
	Type          models.TransactionType `json:"transactionType" binding:"required"`
	Amount        int64                  `json:"amount" binding:"required"`
	Description   string                 `json:"description" binding:"required"`
	PaymentMethod models.PaymentMethod   `json:"paymentMethod"`
}

// Dashboard is the cash position for today and the month so far.
type Dashboard struct {
	Date         time.Time                `json:"date"`
	Today        models.LedgerTotals      `json:"today"`
	MonthToDate  models.LedgerTotals      `json:"monthToDate"`
	TodaySales   repository.SalesSummary  `json:"todaySales"`
	OverduePawns int                      `json:"overduePawns"`
	Repairs      []repository.StatusCount `json:"repairs"`
	Breakdown    []models.LedgerBreakdown `json:"breakdown"`
}

// appendLedger writes one ledger row inside the caller's unit of work.
// Nothing is written for a zero amount.
func appendLedger(ctx context.Context, tx *repository.Store, t *models.Transaction) error {
	if t.Amount == 0 {
		return nil
	}
	if t.Amount < 0 {
		return rules.Invalid("amount", "must be > 0")
	}
	if t.PaymentMethod == "" {
		t.PaymentMethod = models.MethodCash
	}
	return tx.Transactions.Create(ctx, t)
}

func staffRef(actor models.Actor) *int {
	if actor.StaffID == 0 {
		return nil
	}
	id := actor.StaffID
	return &id
}

func ref(id int) *int {
	return &id
}

func paymentMethod(m models.PaymentMethod) (models.PaymentMethod, error) {
	if m == "" {
		return models.MethodCash, nil
	}
	if !m.Valid() {
		return "", rules.Invalid("payment_method", "unknown method %q", m)
	}
	return m, nil
}

// RecordManual appends a hand-entered income or expense.
func (s *LedgerService) RecordManual(ctx context.Context, actor models.Actor, req *ManualEntryRequest) (*models.Transaction, error) {
	if req.Type != models.TrxIncome && req.Type != models.TrxExpense {
		return nil, rules.Invalid("transaction_type", "must be income or expense")
	}
	if req.Amount <= 0 {
		return nil, rules.Invalid("amount", "must be > 0")
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, rules.Invalid("description", "is required")
	}
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	now := rules.StampOf(s.clock.Now())
	trx := &models.Transaction{
		TransactionType: req.Type,
		Amount:          req.Amount,
		Description:     desc,
		ReferenceType:   models.RefManual,
		PaymentMethod:   method,
		StaffID:         staffRef(actor),
		TransactionDate: now,
		CreatedAt:       now,
	}
	if err := appendLedger(ctx, s.store, trx); err != nil {
		return nil, err
	}

	log.Info().
		Int("transaction_id", trx.ID).
		Str("type", string(trx.TransactionType)).
		Int64("amount", trx.Amount).
		Int("staff_id", actor.StaffID).
		Msg("Manual ledger entry recorded")
	return trx, nil
}

// List returns ledger rows matching the filter.
func (s *LedgerService) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	return s.store.Transactions.GetAllPaged(ctx, f)
}

// Dashboard reports today's and the month's cash totals.
func (s *LedgerService) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := rules.Today(s.clock)
	dayStart, dayEnd := rules.DayRange(today, today, s.loc)
	monthStart, _ := rules.DayRange(rules.Date(today.Year(), today.Month(), 1), today, s.loc)

	d := &Dashboard{Date: today}
	var err error
	if d.Today, err = s.store.Transactions.Totals(ctx, dayStart, dayEnd); err != nil {
		return nil, err
	}
	if d.MonthToDate, err = s.store.Transactions.Totals(ctx, monthStart, dayEnd); err != nil {
		return nil, err
	}
	if d.TodaySales, err = s.store.Sales.Summary(ctx, dayStart, dayEnd); err != nil {
		return nil, err
	}
	if d.OverduePawns, err = s.store.Pawns.CountOverdue(ctx, today); err != nil {
		return nil, err
	}
	if d.Repairs, err = s.store.Repairs.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if d.Breakdown, err = s.store.Transactions.Breakdown(ctx, dayStart, dayEnd); err != nil {
		return nil, err
	}
	return d, nil
}
