package rules

import (
	"time"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// WarrantyEnd is start plus the given number of calendar months.
func WarrantyEnd(start time.Time, months int) (time.Time, error) {
	if months < 0 {
		return time.Time{}, Invalid("warranty_months", "must be >= 0")
	}
	end := AddMonths(DateOf(start), months)
	if end.Before(DateOf(start)) {
		return time.Time{}, Invalid("end_date", "must not be before start_date")
	}
	return end, nil
}

// RemainingDays is end_date − today in calendar days. Negative once expired.
func RemainingDays(w *models.Warranty, today time.Time) int {
	return DaysBetween(today, w.EndDate)
}

// EffectiveWarrantyStatus computes the status a lookup must report. claimed and
// voided are terminal. Anything else past its end date is expired. A stored
// expired value from older records is honoured as is.
func EffectiveWarrantyStatus(w *models.Warranty, today time.Time) models.WarrantyStatus {
	switch w.Status {
	case models.WarrantyClaimed, models.WarrantyVoided, models.WarrantyExpired:
		return w.Status
	}
	if RemainingDays(w, today) < 0 {
		return models.WarrantyExpired
	}
	return models.WarrantyActive
}

// ViewWarranty decorates a warranty with its live coverage.
func ViewWarranty(w models.Warranty, today time.Time) models.WarrantyView {
	return models.WarrantyView{
		Warranty:        w,
		EffectiveStatus: EffectiveWarrantyStatus(&w, today),
		RemainingDays:   RemainingDays(&w, today),
	}
}

// TransitionWarranty applies a claim or void. Only an effectively active
// warranty can be claimed; any non-terminal warranty can be voided.
func TransitionWarranty(w *models.Warranty, to models.WarrantyStatus, today time.Time) error {
	effective := EffectiveWarrantyStatus(w, today)
	illegal := &IllegalTransitionError{Entity: "warranty " + w.WarrantyNumber, From: string(effective), To: string(to)}

	switch to {
	case models.WarrantyClaimed:
		if effective != models.WarrantyActive {
			illegal.Reason = "only an active warranty can be claimed"
			return illegal
		}
	case models.WarrantyVoided:
		if effective == models.WarrantyClaimed || effective == models.WarrantyVoided {
			illegal.Reason = "warranty is already closed"
			return illegal
		}
	default:
		illegal.Reason = "status is not settable"
		return illegal
	}
	w.Status = to
	return nil
}

// WarrantyToken is the lookup payload printed on a warranty card.
func WarrantyToken(number string) string {
	return TokenWarranty + number
}
