package rules

import (
	"strings"

	"github.com/GTDGit/gtd_pos/internal/models"
)

var unitTransitions = map[models.UnitStatus][]models.UnitStatus{
	models.UnitAvailable: {models.UnitSold, models.UnitReserved, models.UnitRepair, models.UnitDamaged},
	models.UnitReserved:  {models.UnitAvailable, models.UnitSold},
	models.UnitRepair:    {models.UnitAvailable, models.UnitDamaged},
}

// CanTransitionUnit reports whether a unit may move from one status to another.
// sold and damaged are terminal.
func CanTransitionUnit(from, to models.UnitStatus) bool {
	for _, s := range unitTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionUnit validates a status change and applies it to unit.
func TransitionUnit(unit *models.InventoryUnit, to models.UnitStatus) error {
	if !to.Valid() {
		return Invalid("status", "unknown unit status %q", to)
	}
	if to == models.UnitSold && unit.Status != models.UnitAvailable && unit.Status != models.UnitReserved {
		return UnitNotAvailable(unit.ID, string(unit.Status))
	}
	if !CanTransitionUnit(unit.Status, to) {
		return &IllegalTransitionError{
			Entity: "inventory unit",
			From:   string(unit.Status),
			To:     string(to),
		}
	}
	unit.Status = to
	return nil
}

// NormalizeIMEI trims whitespace. An empty IMEI becomes nil.
func NormalizeIMEI(imei *string) *string {
	if imei == nil {
		return nil
	}
	v := strings.TrimSpace(*imei)
	if v == "" {
		return nil
	}
	return &v
}

// ValidateIMEI accepts 14 to 17 digits, covering IMEI and IMEISV.
func ValidateIMEI(imei string) error {
	if len(imei) < 14 || len(imei) > 17 {
		return Invalid("imei", "must be 14 to 17 digits, got %d characters", len(imei))
	}
	for _, r := range imei {
		if r < '0' || r > '9' {
			return Invalid("imei", "must contain digits only")
		}
	}
	return nil
}

// StockReceipt is the input of receiving one unit.
type StockReceipt struct {
	Product   *models.Product
	IMEI      *string
	Serial    *string
	Condition models.UnitCondition
	Cost      int64
	Price     int64
}

// ValidateReceipt checks a stock-in before anything is written.
func ValidateReceipt(r StockReceipt) error {
	if r.Product == nil {
		return Invalid("product_id", "product is required")
	}
	if !r.Product.IsActive {
		return Invalid("product_id", "product %d is inactive", r.Product.ID)
	}
	if r.Product.TrackIMEI && r.IMEI == nil {
		return Invalid("imei", "product %q tracks IMEI and requires one", r.Product.Name)
	}
	if r.IMEI != nil {
		if err := ValidateIMEI(*r.IMEI); err != nil {
			return err
		}
	}
	if r.Condition != "" && !r.Condition.Valid() {
		return Invalid("condition", "unknown condition %q", r.Condition)
	}
	if r.Cost < 0 {
		return Invalid("cost_price", "must be >= 0")
	}
	if r.Price < 0 {
		return Invalid("selling_price", "must be >= 0")
	}
	return nil
}

// IsLowStock reports whether an available count is at or below the threshold.
func IsLowStock(available, threshold int) bool {
	return available <= threshold
}

// Stock urgency levels for reorder reports.
const (
	UrgencyOut      = "out"
	UrgencyCritical = "critical"
	UrgencyLow      = "low"
)

// StockUrgency classifies a low-stock product. It returns "" when stock is healthy.
func StockUrgency(available, threshold int) string {
	switch {
	case available <= 0:
		return UrgencyOut
	case available <= threshold/2:
		return UrgencyCritical
	case available <= threshold:
		return UrgencyLow
	}
	return ""
}
