package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/sse"
)

// PawnService runs pawn contracts from disbursement to redemption or liquidation.
type PawnService struct {
	store    *repository.Store
	clock    rules.Clock
	terms    rules.PawnTerms
	notifier sse.Notifier
}

// NewPawnService constructs a PawnService from the shop's pawn parameters.
func NewPawnService(store *repository.Store, clock rules.Clock, shop config.ShopConfig, notifier sse.Notifier) *PawnService {
	return &PawnService{
		store: store,
		clock: clock,
		terms: rules.PawnTerms{
			InterestRate: shop.PawnInterestRate,
			TermDays:     shop.PawnTermDays,
			LoanRatio:    shop.PawnLoanRatio,
		},
		notifier: notifier,
	}
}

// OpenPawnRequest opens a contract. A zero loan amount takes the suggested
// loan; a nil rate takes the shop's standing rate.
type OpenPawnRequest struct {
	CustomerID      int                  `json:"customerId" binding:"required"`
	ItemDescription string               `json:"itemDescription" binding:"required"`
	IMEI            *string              `json:"imei"`
	ItemValue       int64                `json:"itemValue" binding:"required"`
	LoanAmount      int64                `json:"loanAmount"`
	InterestRate    *float64             `json:"interestRate"`
	DueDate         *time.Time           `json:"dueDate"`
	Notes           *string              `json:"notes"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
}

// PawnPaymentRequest is money received against a contract.
type PawnPaymentRequest struct {
	Amount        int64                `json:"amount" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Notes         *string              `json:"notes"`
}

// PawnDetail is a contract with its live figures and payment history.
type PawnDetail struct {
	models.PawnView
	Payments []models.PawnPayment `json:"payments"`
}

// Open disburses a loan against a pledged item and records the cash outflow.
func (s *PawnService) Open(ctx context.Context, actor models.Actor, req *OpenPawnRequest) (*models.PawnView, error) {
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	stamp := rules.StampOf(now)
	today := rules.DateOf(now)

	imei := rules.NormalizeIMEI(req.IMEI)
	if imei != nil {
		if err := rules.ValidateIMEI(*imei); err != nil {
			return nil, err
		}
	}
	loan := req.LoanAmount
	if loan == 0 {
		loan = rules.SuggestedLoan(req.ItemValue, s.terms.LoanRatio)
	}
	rate := s.terms.InterestRate
	if req.InterestRate != nil {
		rate = *req.InterestRate
	}
	due, err := rules.ValidatePawn(rules.PawnApplication{
		CustomerID:      req.CustomerID,
		ItemDescription: strings.TrimSpace(req.ItemDescription),
		ItemValue:       req.ItemValue,
		LoanAmount:      loan,
		InterestRate:    rate,
		ContractDate:    today,
		DueDate:         req.DueDate,
	}, s.terms)
	if err != nil {
		return nil, err
	}

	c := &models.PawnContract{
		CustomerID:      req.CustomerID,
		StaffID:         actor.StaffID,
		ItemDescription: strings.TrimSpace(req.ItemDescription),
		IMEI:            imei,
		ItemValue:       req.ItemValue,
		LoanAmount:      loan,
		InterestRate:    rate,
		ContractDate:    today,
		DueDate:         due,
		Status:          models.PawnActive,
		Notes:           req.Notes,
		CreatedAt:       stamp,
		UpdatedAt:       stamp,
	}
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		customer, err := tx.Customers.GetByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		c.CustomerName = customer.Name
		if c.ContractNumber, err = rules.NextNumber(ctx, rules.PrefixPawn, now, tx.Pawns.NumberExists); err != nil {
			return err
		}
		if err := tx.Pawns.Create(ctx, c); err != nil {
			return err
		}
		return appendLedger(ctx, tx, &models.Transaction{
			TransactionType: models.TrxExpense,
			Amount:          c.LoanAmount,
			Description:     fmt.Sprintf("Pawn loan %s: %s", c.ContractNumber, c.ItemDescription),
			ReferenceType:   models.RefPawnLoan,
			ReferenceID:     ref(c.ID),
			PaymentMethod:   method,
			StaffID:         staffRef(actor),
			TransactionDate: stamp,
			CreatedAt:       stamp,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("contract_number", c.ContractNumber).
		Int64("loan", c.LoanAmount).
		Float64("rate", c.InterestRate).
		Time("due_date", c.DueDate).
		Int("staff_id", actor.StaffID).
		Msg("Pawn contract opened")
	s.notifier.NotifyPawnChanged(c)
	v := rules.ViewPawn(*c, today)
	return &v, nil
}

// pawnChange is one payment-bearing operation on a contract.
type pawnChange struct {
	op          string
	paymentType models.PawnPaymentType
	reference   models.ReferenceType
	apply       func(c *models.PawnContract, today time.Time) (payment models.PawnPayment, err error)
}

// change loads a contract, applies op and stores the contract, its payment
// and the ledger income in one unit of work.
func (s *PawnService) change(ctx context.Context, actor models.Actor, number string, method models.PaymentMethod, notes *string, op pawnChange) (*models.PawnView, error) {
	method, err := paymentMethod(method)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	stamp := rules.StampOf(now)
	today := rules.DateOf(now)

	var contract *models.PawnContract
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		c, err := tx.Pawns.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
		if err != nil {
			return err
		}
		p, err := op.apply(c, today)
		if err != nil {
			return err
		}
		c.UpdatedAt = stamp
		if err := tx.Pawns.Update(ctx, c); err != nil {
			return err
		}
		contract = c
		if p.Amount == 0 {
			return nil
		}

		p.ContractID = c.ID
		p.PaymentType = op.paymentType
		p.PaymentDate = stamp
		p.StaffID = actor.StaffID
		p.Notes = notes
		if err := tx.Pawns.AddPayment(ctx, &p); err != nil {
			return err
		}
		return appendLedger(ctx, tx, &models.Transaction{
			TransactionType: models.TrxIncome,
			Amount:          p.Amount,
			Description:     fmt.Sprintf("Pawn %s %s", op.op, c.ContractNumber),
			ReferenceType:   op.reference,
			ReferenceID:     ref(c.ID),
			PaymentMethod:   method,
			StaffID:         staffRef(actor),
			TransactionDate: stamp,
			CreatedAt:       stamp,
		})
	})
	if err != nil {
		log.Warn().Err(err).Str("contract_number", number).Str("op", op.op).Msg("Pawn operation rejected")
		return nil, err
	}

	log.Info().
		Str("contract_number", contract.ContractNumber).
		Str("op", op.op).
		Str("status", string(contract.Status)).
		Int64("payments_made", contract.PaymentsMade).
		Int("staff_id", actor.StaffID).
		Msg("Pawn contract updated")
	s.notifier.NotifyPawnChanged(contract)
	v := rules.ViewPawn(*contract, today)
	return &v, nil
}

// Redeem closes the contract against a payment covering loan plus current
// interest. Only loan plus interest is collected; any excess is change.
func (s *PawnService) Redeem(ctx context.Context, actor models.Actor, number string, req *PawnPaymentRequest) (*models.PawnView, error) {
	now := rules.StampOf(s.clock.Now())
	return s.change(ctx, actor, number, req.PaymentMethod, req.Notes, pawnChange{
		op:          "redeem",
		paymentType: models.PawnPaymentRedemption,
		reference:   models.RefPawnRedeem,
		apply: func(c *models.PawnContract, today time.Time) (models.PawnPayment, error) {
			interest, err := rules.Redeem(c, req.Amount, today)
			if err != nil {
				return models.PawnPayment{}, err
			}
			c.ClosedAt = &now
			return models.PawnPayment{
				Amount:          c.LoanAmount + interest,
				InterestAmount:  interest,
				PrincipalAmount: c.LoanAmount,
			}, nil
		},
	})
}

// Extend rolls the contract over one term against payment of the accrued interest.
func (s *PawnService) Extend(ctx context.Context, actor models.Actor, number string, req *PawnPaymentRequest) (*models.PawnView, error) {
	return s.change(ctx, actor, number, req.PaymentMethod, req.Notes, pawnChange{
		op:          "extend",
		paymentType: models.PawnPaymentExtension,
		reference:   models.RefPawnInterest,
		apply: func(c *models.PawnContract, today time.Time) (models.PawnPayment, error) {
			if err := rules.Extend(c, req.Amount, today, s.terms); err != nil {
				return models.PawnPayment{}, err
			}
			return models.PawnPayment{Amount: req.Amount, InterestAmount: req.Amount}, nil
		},
	})
}

// CollectInterest records an interest payment without changing the term.
func (s *PawnService) CollectInterest(ctx context.Context, actor models.Actor, number string, req *PawnPaymentRequest) (*models.PawnView, error) {
	return s.change(ctx, actor, number, req.PaymentMethod, req.Notes, pawnChange{
		op:          "interest",
		paymentType: models.PawnPaymentInterest,
		reference:   models.RefPawnInterest,
		apply: func(c *models.PawnContract, today time.Time) (models.PawnPayment, error) {
			if err := rules.CollectInterest(c, req.Amount, today); err != nil {
				return models.PawnPayment{}, err
			}
			return models.PawnPayment{Amount: req.Amount, InterestAmount: req.Amount}, nil
		},
	})
}

// Liquidate forfeits the pledged item. No money changes hands here; selling
// the item later is an ordinary stock receipt and sale.
func (s *PawnService) Liquidate(ctx context.Context, actor models.Actor, number string) (*models.PawnView, error) {
	now := rules.StampOf(s.clock.Now())
	return s.change(ctx, actor, number, "", nil, pawnChange{
		op: "liquidate",
		apply: func(c *models.PawnContract, today time.Time) (models.PawnPayment, error) {
			if err := rules.Liquidate(c, today); err != nil {
				return models.PawnPayment{}, err
			}
			c.ClosedAt = &now
			return models.PawnPayment{}, nil
		},
	})
}

// Get returns a contract with its figures as of today and its payments.
func (s *PawnService) Get(ctx context.Context, number string) (*PawnDetail, error) {
	c, err := s.store.Pawns.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Pawns.Payments(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &PawnDetail{PawnView: rules.ViewPawn(*c, rules.Today(s.clock)), Payments: payments}, nil
}

// List returns contracts matching the filter. overdue is a valid status filter.
func (s *PawnService) List(ctx context.Context, f models.PawnFilter) ([]models.PawnView, int, error) {
	today := rules.Today(s.clock)
	list, total, err := s.store.Pawns.GetAllPaged(ctx, f, today)
	if err != nil {
		return nil, 0, err
	}
	views := make([]models.PawnView, len(list))
	for i, c := range list {
		views[i] = rules.ViewPawn(c, today)
	}
	return views, total, nil
}

// SuggestLoan is the loan the shop offers for an item value.
func (s *PawnService) SuggestLoan(itemValue int64) (int64, error) {
	if itemValue <= 0 {
		return 0, rules.Invalid("item_value", "must be > 0")
	}
	return rules.SuggestedLoan(itemValue, s.terms.LoanRatio), nil
}
