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

// RepairService runs service tickets through the bench workflow.
type RepairService struct {
	store    *repository.Store
	clock    rules.Clock
	shop     config.ShopConfig
	notifier sse.Notifier
}

// NewRepairService constructs a RepairService.
func NewRepairService(store *repository.Store, clock rules.Clock, shop config.ShopConfig, notifier sse.Notifier) *RepairService {
	return &RepairService{store: store, clock: clock, shop: shop, notifier: notifier}
}

// IntakeRequest books a device in for repair.
type IntakeRequest struct {
	CustomerID          int        `json:"customerId" binding:"required"`
	TechnicianID        *int       `json:"technicianId"`
	DeviceBrand         string     `json:"deviceBrand" binding:"required"`
	DeviceModel         string     `json:"deviceModel" binding:"required"`
	IMEI                *string    `json:"imei"`
	ProblemDescription  string     `json:"problemDescription" binding:"required"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion"`
	WarrantyMonths      *int       `json:"warrantyMonths"`
	LaborCost           int64      `json:"laborCost"`
	PartsCost           int64      `json:"partsCost"`
	LockInfo            *string    `json:"lockInfo"`
	Notes               *string    `json:"notes"`
}

// RepairStatusRequest moves a ticket along the workflow.
type RepairStatusRequest struct {
	Status       models.RepairStatus `json:"status" binding:"required"`
	Diagnosis    *string             `json:"diagnosis"`
	TechnicianID *int                `json:"technicianId"`
	Notes        *string             `json:"notes"`
}

// RepairCostRequest replaces the quoted costs.
type RepairCostRequest struct {
	LaborCost int64 `json:"laborCost"`
	PartsCost int64 `json:"partsCost"`
}

// RepairPaymentRequest is money collected for a ticket.
type RepairPaymentRequest struct {
	Amount        int64                `json:"amount" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// RepairDetail is a ticket with what is still owed and any warranty issued on delivery.
type RepairDetail struct {
	*models.Repair
	Balance  int64            `json:"balance"`
	Warranty *models.Warranty `json:"warranty,omitempty"`
}

// Intake creates a ticket in status received.
func (s *RepairService) Intake(ctx context.Context, actor models.Actor, req *IntakeRequest) (*RepairDetail, error) {
	now := s.clock.Now()
	stamp := rules.StampOf(now)
	today := rules.DateOf(now)

	brand := strings.TrimSpace(req.DeviceBrand)
	model := strings.TrimSpace(req.DeviceModel)
	problem := strings.TrimSpace(req.ProblemDescription)
	switch {
	case brand == "":
		return nil, rules.Invalid("device_brand", "is required")
	case model == "":
		return nil, rules.Invalid("device_model", "is required")
	case problem == "":
		return nil, rules.Invalid("problem_description", "is required")
	}
	imei := rules.NormalizeIMEI(req.IMEI)
	if imei != nil {
		if err := rules.ValidateIMEI(*imei); err != nil {
			return nil, err
		}
	}
	estimated := rules.AddDays(today, s.shop.RepairEstimateDays)
	if req.EstimatedCompletion != nil {
		estimated = rules.DateOf(*req.EstimatedCompletion)
		if estimated.Before(today) {
			return nil, rules.Invalid("estimated_completion", "must not be in the past")
		}
	}
	months := s.shop.RepairWarrantyMonths
	if req.WarrantyMonths != nil {
		if *req.WarrantyMonths < 0 {
			return nil, rules.Invalid("warranty_months", "must be >= 0")
		}
		months = *req.WarrantyMonths
	}

	r := &models.Repair{
		CustomerID:          req.CustomerID,
		StaffID:             actor.StaffID,
		TechnicianID:        req.TechnicianID,
		DeviceBrand:         brand,
		DeviceModel:         model,
		IMEI:                imei,
		ProblemDescription:  problem,
		Status:              models.RepairReceived,
		ReceivedDate:        stamp,
		EstimatedCompletion: estimated,
		WarrantyMonths:      months,
		LockInfo:            req.LockInfo,
		Notes:               req.Notes,
		CreatedAt:           stamp,
		UpdatedAt:           stamp,
	}
	if err := rules.SetRepairCosts(r, req.LaborCost, req.PartsCost); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		customer, err := tx.Customers.GetByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		r.CustomerName = customer.Name
		if req.TechnicianID != nil {
			if _, err := tx.Staff.GetByID(ctx, *req.TechnicianID); err != nil {
				return err
			}
		}
		if r.RepairNumber, err = rules.NextNumber(ctx, rules.PrefixRepair, now, tx.Repairs.NumberExists); err != nil {
			return err
		}
		r.LookupToken = rules.RepairToken(r.RepairNumber)
		return tx.Repairs.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("repair_number", r.RepairNumber).
		Str("device", brand+" "+model).
		Int("staff_id", actor.StaffID).
		Msg("Repair received")
	s.notifier.NotifyRepairChanged(r)
	return &RepairDetail{Repair: r, Balance: rules.RepairBalance(r)}, nil
}

// Transition moves a ticket to another status. Delivering a ticket with
// warranty months issues a repair warranty for the device.
func (s *RepairService) Transition(ctx context.Context, actor models.Actor, key string, req *RepairStatusRequest) (*RepairDetail, error) {
	now := s.clock.Now()
	stamp := rules.StampOf(now)
	today := rules.DateOf(now)

	if !rules.ValidRepairStatus(req.Status) {
		return nil, rules.Invalid("status", "unknown repair status %q", req.Status)
	}

	detail := &RepairDetail{}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		r, err := s.find(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := rules.TransitionRepair(r, req.Status, rules.FixedClock{T: now}); err != nil {
			return err
		}
		if req.Diagnosis != nil {
			r.Diagnosis = req.Diagnosis
		}
		if req.TechnicianID != nil {
			if _, err := tx.Staff.GetByID(ctx, *req.TechnicianID); err != nil {
				return err
			}
			r.TechnicianID = req.TechnicianID
		}
		if req.Notes != nil {
			r.Notes = req.Notes
		}
		r.UpdatedAt = stamp
		if err := tx.Repairs.Update(ctx, r); err != nil {
			return err
		}
		detail.Repair = r

		if r.Status != models.RepairDelivered || r.WarrantyMonths == 0 {
			return nil
		}
		w := &models.Warranty{
			RepairID:       &r.ID,
			CustomerID:     &r.CustomerID,
			IMEI:           r.IMEI,
			ProductName:    fmt.Sprintf("%s %s (repair %s)", r.DeviceBrand, r.DeviceModel, r.RepairNumber),
			WarrantyType:   models.WarrantyTypeRepair,
			WarrantyMonths: r.WarrantyMonths,
			StartDate:      today,
		}
		if err := issueWarranty(ctx, tx, now, w); err != nil {
			return err
		}
		detail.Warranty = w
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("repair", key).Str("to", string(req.Status)).Msg("Repair transition rejected")
		return nil, err
	}

	r := detail.Repair
	detail.Balance = rules.RepairBalance(r)
	log.Info().
		Str("repair_number", r.RepairNumber).
		Str("status", string(r.Status)).
		Int("staff_id", actor.StaffID).
		Msg("Repair status changed")
	s.notifier.NotifyRepairChanged(r)
	return detail, nil
}

// UpdateCosts replaces labor and parts costs. The total always follows.
func (s *RepairService) UpdateCosts(ctx context.Context, actor models.Actor, key string, req *RepairCostRequest) (*RepairDetail, error) {
	var r *models.Repair
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var err error
		if r, err = s.find(ctx, tx, key); err != nil {
			return err
		}
		if err := rules.SetRepairCosts(r, req.LaborCost, req.PartsCost); err != nil {
			return err
		}
		r.UpdatedAt = rules.StampOf(s.clock.Now())
		return tx.Repairs.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("repair_number", r.RepairNumber).
		Int64("total_cost", r.TotalCost).
		Int("staff_id", actor.StaffID).
		Msg("Repair costs updated")
	return &RepairDetail{Repair: r, Balance: rules.RepairBalance(r)}, nil
}

// CollectPayment records money received for a ticket. The amount may not
// exceed what is still owed.
func (s *RepairService) CollectPayment(ctx context.Context, actor models.Actor, key string, req *RepairPaymentRequest) (*RepairDetail, error) {
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, rules.Invalid("amount", "must be > 0")
	}
	stamp := rules.StampOf(s.clock.Now())

	var r *models.Repair
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		var err error
		if r, err = s.find(ctx, tx, key); err != nil {
			return err
		}
		if r.Status == models.RepairCancelled {
			return &rules.IllegalTransitionError{
				Entity: "repair " + r.RepairNumber,
				From:   string(r.Status),
				To:     string(r.Status),
				Reason: "cancelled tickets take no payment",
			}
		}
		if balance := rules.RepairBalance(r); req.Amount > balance {
			return rules.Invalid("amount", "exceeds balance %d", balance)
		}
		r.PaidAmount += req.Amount
		r.UpdatedAt = stamp
		if err := tx.Repairs.Update(ctx, r); err != nil {
			return err
		}
		return appendLedger(ctx, tx, &models.Transaction{
			TransactionType: models.TrxIncome,
			Amount:          req.Amount,
			Description:     "Repair " + r.RepairNumber,
			ReferenceType:   models.RefRepair,
			ReferenceID:     ref(r.ID),
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
		Str("repair_number", r.RepairNumber).
		Int64("amount", req.Amount).
		Int64("paid", r.PaidAmount).
		Int("staff_id", actor.StaffID).
		Msg("Repair payment collected")
	return &RepairDetail{Repair: r, Balance: rules.RepairBalance(r)}, nil
}

// find resolves a repair number or printed REPAIR: token.
func (s *RepairService) find(ctx context.Context, st *repository.Store, key string) (*models.Repair, error) {
	number := strings.ToUpper(strings.TrimSpace(key))
	number = strings.TrimPrefix(number, rules.TokenRepair)
	if number == "" {
		return nil, rules.Invalid("repair_number", "is required")
	}
	return st.Repairs.GetByNumber(ctx, number)
}

// Get looks a ticket up by number or token.
func (s *RepairService) Get(ctx context.Context, key string) (*RepairDetail, error) {
	r, err := s.find(ctx, s.store, key)
	if err != nil {
		return nil, err
	}
	return &RepairDetail{Repair: r, Balance: rules.RepairBalance(r)}, nil
}

func (s *RepairService) List(ctx context.Context, f models.RepairFilter) ([]models.Repair, int, error) {
	if f.Status != "" && !rules.ValidRepairStatus(f.Status) {
		return nil, 0, rules.Invalid("status", "unknown repair status %q", f.Status)
	}
	return s.store.Repairs.GetAllPaged(ctx, f)
}
