package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

// InventoryService receives stock and moves units through their lifecycle.
// Units are sold only through checkout.
type InventoryService struct {
	store   *repository.Store
	clock   rules.Clock
	dueDays int
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(store *repository.Store, clock rules.Clock, debtDueDays int) *InventoryService {
	return &InventoryService{store: store, clock: clock, dueDays: debtDueDays}
}

// ReceiveStockRequest is one unit arriving from a supplier.
type ReceiveStockRequest struct {
	ProductID     int                  `json:"productId" binding:"required"`
	SupplierID    *int                 `json:"supplierId"`
	IMEI          *string              `json:"imei"`
	SerialNumber  *string              `json:"serialNumber"`
	Condition     models.UnitCondition `json:"condition"`
	CostPrice     int64                `json:"costPrice"`
	SellingPrice  *int64               `json:"sellingPrice"`
	Location      *string              `json:"location"`
	Notes         *string              `json:"notes"`
	OnCredit      bool                 `json:"onCredit"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// TransitionUnitRequest moves a unit to another status.
type TransitionUnitRequest struct {
	Status models.UnitStatus `json:"status" binding:"required"`
}

// Receive stores one unit.
func (s *InventoryService) Receive(ctx context.Context, actor models.Actor, req *ReceiveStockRequest) (*models.InventoryUnit, error) {
	units, err := s.ReceiveBatch(ctx, actor, []ReceiveStockRequest{*req})
	if err != nil {
		return nil, err
	}
	return &units[0], nil
}

// ReceiveBatch stores several units in one unit of work. Any rejected unit,
// such as a duplicate IMEI, rolls back the whole batch.
func (s *InventoryService) ReceiveBatch(ctx context.Context, actor models.Actor, reqs []ReceiveStockRequest) ([]models.InventoryUnit, error) {
	if len(reqs) == 0 {
		return nil, rules.Invalid("units", "at least one unit is required")
	}
	now := s.clock.Now()
	units := make([]models.InventoryUnit, 0, len(reqs))

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		for i := range reqs {
			u, err := s.receive(ctx, tx, actor, now, &reqs[i])
			if err != nil {
				return err
			}
			units = append(units, *u)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("units", len(reqs)).Msg("Stock receipt rejected")
		return nil, err
	}

	log.Info().Int("units", len(units)).Int("staff_id", actor.StaffID).Msg("Stock received")
	return units, nil
}

func (s *InventoryService) receive(ctx context.Context, tx *repository.Store, actor models.Actor, now time.Time, req *ReceiveStockRequest) (*models.InventoryUnit, error) {
	stamp := rules.StampOf(now)

	product, err := tx.Products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	imei := rules.NormalizeIMEI(req.IMEI)
	price := product.SellingPrice
	if req.SellingPrice != nil {
		price = *req.SellingPrice
	}
	if err := rules.ValidateReceipt(rules.StockReceipt{
		Product:   product,
		IMEI:      imei,
		Serial:    req.SerialNumber,
		Condition: req.Condition,
		Cost:      req.CostPrice,
		Price:     price,
	}); err != nil {
		return nil, err
	}
	if imei != nil {
		taken, err := tx.Units.IMEIExists(ctx, *imei)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, rules.DuplicateIMEI(*imei)
		}
	}
	if req.OnCredit && req.SupplierID == nil {
		return nil, rules.Invalid("supplier_id", "stock on credit needs a supplier")
	}
	if req.SupplierID != nil {
		if _, err := tx.Suppliers.GetByID(ctx, *req.SupplierID); err != nil {
			return nil, err
		}
	}
	condition := req.Condition
	if condition == "" {
		condition = models.ConditionNew
	}

	u := &models.InventoryUnit{
		ProductID:    product.ID,
		SupplierID:   req.SupplierID,
		IMEI:         imei,
		SerialNumber: req.SerialNumber,
		Condition:    condition,
		Status:       models.UnitAvailable,
		CostPrice:    req.CostPrice,
		SellingPrice: price,
		Location:     req.Location,
		PurchaseDate: stamp,
		Notes:        req.Notes,
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
		ProductName:  product.Name,
	}
	if err := tx.Units.Create(ctx, u); err != nil {
		return nil, err
	}

	if u.CostPrice == 0 {
		return u, nil
	}
	desc := fmt.Sprintf("Stock in: %s", product.Name)
	if imei != nil {
		desc += " IMEI " + *imei
	}
	if req.OnCredit {
		err = openDebt(ctx, tx, now, &models.Debt{
			DebtorType:    models.DebtorSupplier,
			DebtorID:      *req.SupplierID,
			Amount:        u.CostPrice,
			Description:   desc,
			ReferenceType: models.RefStock,
			ReferenceID:   ref(u.ID),
			DueDate:       rules.AddDays(rules.DateOf(now), s.dueDays),
		})
		return u, err
	}
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	err = appendLedger(ctx, tx, &models.Transaction{
		TransactionType: models.TrxExpense,
		Amount:          u.CostPrice,
		Description:     desc,
		ReferenceType:   models.RefStock,
		ReferenceID:     ref(u.ID),
		PaymentMethod:   method,
		StaffID:         staffRef(actor),
		TransactionDate: stamp,
		CreatedAt:       stamp,
	})
	return u, err
}

// Transition moves a unit between reserved, repair, damaged and available.
func (s *InventoryService) Transition(ctx context.Context, actor models.Actor, id int, to models.UnitStatus) (*models.InventoryUnit, error) {
	if to == models.UnitSold {
		return nil, rules.Invalid("status", "units are sold through checkout")
	}
	u, err := s.store.Units.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := u.Status
	if err := rules.TransitionUnit(u, to); err != nil {
		log.Warn().Err(err).Int("unit_id", id).Msg("Unit transition rejected")
		return nil, err
	}
	u.UpdatedAt = rules.StampOf(s.clock.Now())
	if err := s.store.Units.UpdateStatus(ctx, u.ID, from, to, u.UpdatedAt); err != nil {
		return nil, err
	}

	log.Info().
		Int("unit_id", u.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Int("staff_id", actor.StaffID).
		Msg("Unit status changed")
	return u, nil
}

func (s *InventoryService) Get(ctx context.Context, id int) (*models.InventoryUnit, error) {
	return s.store.Units.GetByID(ctx, id)
}

// GetByIMEI finds a unit by IMEI whatever its status.
func (s *InventoryService) GetByIMEI(ctx context.Context, imei string) (*models.InventoryUnit, error) {
	v := rules.NormalizeIMEI(&imei)
	if v == nil {
		return nil, rules.Invalid("imei", "is required")
	}
	return s.store.Units.GetByIMEI(ctx, *v)
}

func (s *InventoryService) List(ctx context.Context, f models.UnitFilter) ([]models.InventoryUnit, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, rules.Invalid("status", "unknown unit status %q", f.Status)
	}
	return s.store.Units.GetAllPaged(ctx, f)
}
