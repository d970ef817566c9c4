package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/cache"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

// WarrantyService issues warranties and answers coverage lookups.
type WarrantyService struct {
	store        *repository.Store
	clock        rules.Clock
	cache        *cache.LookupCache
	expiringDays int
}

// NewWarrantyService constructs a WarrantyService. lookups may be nil.
func NewWarrantyService(store *repository.Store, clock rules.Clock, lookups *cache.LookupCache, expiringDays int) *WarrantyService {
	return &WarrantyService{store: store, clock: clock, cache: lookups, expiringDays: expiringDays}
}

// IssueWarrantyRequest issues a standalone warranty, e.g. for a phone bought
// elsewhere and serviced here.
type IssueWarrantyRequest struct {
	SaleID         *int                `json:"saleId"`
	ProductID      *int                `json:"productId"`
	CustomerID     *int                `json:"customerId"`
	IMEI           *string             `json:"imei"`
	ProductName    string              `json:"productName"`
	WarrantyType   models.WarrantyType `json:"warrantyType"`
	WarrantyMonths int                 `json:"warrantyMonths"`
	StartDate      *time.Time          `json:"startDate"`
}

// WarrantyNoteRequest carries the note stored with a claim or void.
type WarrantyNoteRequest struct {
	Notes *string `json:"notes"`
}

// issueWarranty numbers and stores a warranty inside the caller's unit of
// work. StartDate and WarrantyMonths must be set.
func issueWarranty(ctx context.Context, tx *repository.Store, now time.Time, w *models.Warranty) error {
	end, err := rules.WarrantyEnd(w.StartDate, w.WarrantyMonths)
	if err != nil {
		return err
	}
	number, err := rules.NextNumber(ctx, rules.PrefixWarranty, now, tx.Warranties.NumberExists)
	if err != nil {
		return err
	}
	stamp := rules.StampOf(now)
	w.WarrantyNumber = number
	w.LookupToken = rules.WarrantyToken(number)
	w.StartDate = rules.DateOf(w.StartDate)
	w.EndDate = end
	w.Status = models.WarrantyActive
	w.CreatedAt = stamp
	w.UpdatedAt = stamp
	return tx.Warranties.Create(ctx, w)
}

// Issue creates a standalone warranty.
func (s *WarrantyService) Issue(ctx context.Context, req *IssueWarrantyRequest) (*models.WarrantyView, error) {
	now := s.clock.Now()
	today := rules.DateOf(now)

	imei := rules.NormalizeIMEI(req.IMEI)
	if imei != nil {
		if err := rules.ValidateIMEI(*imei); err != nil {
			return nil, err
		}
	}
	wType := req.WarrantyType
	if wType == "" {
		wType = models.WarrantyTypeProduct
	}
	if wType != models.WarrantyTypeProduct && wType != models.WarrantyTypeRepair {
		return nil, rules.Invalid("warranty_type", "must be product or repair")
	}
	if req.WarrantyMonths <= 0 {
		return nil, rules.Invalid("warranty_months", "must be > 0")
	}
	start := today
	if req.StartDate != nil {
		start = rules.DateOf(*req.StartDate)
	}

	w := &models.Warranty{
		SaleID:         req.SaleID,
		ProductID:      req.ProductID,
		CustomerID:     req.CustomerID,
		IMEI:           imei,
		ProductName:    strings.TrimSpace(req.ProductName),
		WarrantyType:   wType,
		WarrantyMonths: req.WarrantyMonths,
		StartDate:      start,
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if req.ProductID != nil {
			p, err := tx.Products.GetByID(ctx, *req.ProductID)
			if err != nil {
				return err
			}
			if w.ProductName == "" {
				w.ProductName = p.Name
			}
		}
		if req.CustomerID != nil {
			if _, err := tx.Customers.GetByID(ctx, *req.CustomerID); err != nil {
				return err
			}
		}
		if req.SaleID != nil {
			if _, err := tx.Sales.GetByID(ctx, *req.SaleID); err != nil {
				return err
			}
		}
		if w.ProductName == "" {
			return rules.Invalid("product_name", "is required without a product")
		}
		return issueWarranty(ctx, tx, now, w)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("warranty_number", w.WarrantyNumber).Int("months", w.WarrantyMonths).Msg("Warranty issued")
	v := rules.ViewWarranty(*w, today)
	return &v, nil
}

// Lookup finds a warranty by number, printed token or IMEI and reports its
// coverage as of today. An IMEI returns the most recent warranty for it.
func (s *WarrantyService) Lookup(ctx context.Context, key string) (*models.WarrantyView, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, rules.Invalid("key", "warranty number, token or IMEI is required")
	}
	today := rules.Today(s.clock)

	upper := strings.ToUpper(key)
	byIMEI := rules.ValidateIMEI(key) == nil
	if !byIMEI {
		if w, ok := s.cache.GetWarranty(ctx, upper); ok {
			v := rules.ViewWarranty(*w, today)
			return &v, nil
		}
	}

	var (
		w   *models.Warranty
		err error
	)
	switch {
	case byIMEI:
		w, err = s.store.Warranties.LatestByIMEI(ctx, key)
	case strings.HasPrefix(upper, rules.TokenWarranty):
		w, err = s.store.Warranties.GetByNumber(ctx, strings.TrimPrefix(upper, rules.TokenWarranty))
	default:
		w, err = s.store.Warranties.GetByNumber(ctx, upper)
	}
	if err != nil {
		return nil, err
	}

	// IMEI results change when a newer warranty is issued, so only number and
	// token lookups are cached.
	if !byIMEI {
		s.cache.PutWarranty(ctx, w, upper)
	}
	v := rules.ViewWarranty(*w, today)
	return &v, nil
}

// Claim records a warranty claim. Only an effectively active warranty can be claimed.
func (s *WarrantyService) Claim(ctx context.Context, actor models.Actor, number string, req *WarrantyNoteRequest) (*models.WarrantyView, error) {
	return s.transition(ctx, actor, number, models.WarrantyClaimed, req)
}

// Void cancels a warranty, e.g. for physical damage or tampering.
func (s *WarrantyService) Void(ctx context.Context, actor models.Actor, number string, req *WarrantyNoteRequest) (*models.WarrantyView, error) {
	return s.transition(ctx, actor, number, models.WarrantyVoided, req)
}

func (s *WarrantyService) transition(ctx context.Context, actor models.Actor, number string, to models.WarrantyStatus, req *WarrantyNoteRequest) (*models.WarrantyView, error) {
	now := s.clock.Now()
	today := rules.DateOf(now)

	w, err := s.store.Warranties.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	if err := rules.TransitionWarranty(w, to, today); err != nil {
		log.Warn().Err(err).Str("warranty_number", w.WarrantyNumber).Msg("Warranty transition rejected")
		return nil, err
	}
	if req != nil && req.Notes != nil {
		w.ClaimNotes = req.Notes
	}
	w.UpdatedAt = rules.StampOf(now)
	if err := s.store.Warranties.UpdateStatus(ctx, w); err != nil {
		return nil, err
	}
	s.cache.InvalidateWarranty(ctx, w)

	log.Info().
		Str("warranty_number", w.WarrantyNumber).
		Str("status", string(w.Status)).
		Int("staff_id", actor.StaffID).
		Msg("Warranty status changed")
	v := rules.ViewWarranty(*w, today)
	return &v, nil
}

// List returns warranties matching the filter with their coverage as of today.
func (s *WarrantyService) List(ctx context.Context, f models.WarrantyFilter) ([]models.WarrantyView, int, error) {
	today := rules.Today(s.clock)
	list, total, err := s.store.Warranties.GetAllPaged(ctx, f, today)
	if err != nil {
		return nil, 0, err
	}
	return viewWarranties(list, today), total, nil
}

// Expiring lists active warranties that end within the configured window.
func (s *WarrantyService) Expiring(ctx context.Context) ([]models.WarrantyView, error) {
	today := rules.Today(s.clock)
	list, err := s.store.Warranties.Expiring(ctx, today, rules.AddDays(today, s.expiringDays))
	if err != nil {
		return nil, err
	}
	return viewWarranties(list, today), nil
}

func viewWarranties(list []models.Warranty, today time.Time) []models.WarrantyView {
	views := make([]models.WarrantyView, len(list))
	for i, w := range list {
		views[i] = rules.ViewWarranty(w, today)
	}
	return views
}
