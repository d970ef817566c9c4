package rules

import (
	"github.com/GTDGit/gtd_pos/internal/models"
)

// repairSequence is the forward workflow order up to completion.
var repairSequence = []models.RepairStatus{
	models.RepairReceived,
	models.RepairDiagnosing,
	models.RepairRepairing,
	models.RepairWaitingParts,
	models.RepairCompleted,
}

func repairStep(s models.RepairStatus) int {
	for i, v := range repairSequence {
		if v == s {
			return i
		}
	}
	return -1
}

// ValidRepairStatus reports whether s is a known repair status.
func ValidRepairStatus(s models.RepairStatus) bool {
	switch s {
	case models.RepairCustomerNotified, models.RepairDelivered, models.RepairCancelled:
		return true
	}
	return repairStep(s) >= 0
}

// IsRepairTerminal reports whether no further transition is possible.
func IsRepairTerminal(s models.RepairStatus) bool {
	return s == models.RepairDelivered || s == models.RepairCancelled
}

// CanTransitionRepair reports whether a ticket may move between statuses.
// Moves go forward through the bench sequence up to completed and may skip
// steps; waiting_parts may go back to repairing. After completion the customer
// is notified and then the device is delivered. Any non-terminal ticket may be
// cancelled.
func CanTransitionRepair(from, to models.RepairStatus) bool {
	if from == to || IsRepairTerminal(from) || !ValidRepairStatus(to) {
		return false
	}
	if to == models.RepairCancelled {
		return true
	}
	switch from {
	case models.RepairCompleted:
		return to == models.RepairCustomerNotified || to == models.RepairDelivered
	case models.RepairCustomerNotified:
		return to == models.RepairDelivered
	case models.RepairWaitingParts:
		if to == models.RepairRepairing {
			return true
		}
	}
	fi, ti := repairStep(from), repairStep(to)
	return fi >= 0 && ti > fi
}

// TransitionRepair applies a status change. actual_completion is stamped
// exactly when the ticket becomes completed.
func TransitionRepair(r *models.Repair, to models.RepairStatus, now Clock) error {
	if !CanTransitionRepair(r.Status, to) {
		return &IllegalTransitionError{
			Entity: "repair " + r.RepairNumber,
			From:   string(r.Status),
			To:     string(to),
		}
	}
	r.Status = to
	if to == models.RepairCompleted {
		t := StampOf(now.Now())
		r.ActualCompletion = &t
	}
	if to == models.RepairDelivered {
		t := StampOf(now.Now())
		r.DeliveredAt = &t
	}
	return nil
}

// SetRepairCosts updates costs and keeps total = labor + parts.
func SetRepairCosts(r *models.Repair, labor, parts int64) error {
	if labor < 0 {
		return Invalid("labor_cost", "must be >= 0")
	}
	if parts < 0 {
		return Invalid("parts_cost", "must be >= 0")
	}
	if IsRepairTerminal(r.Status) {
		return &IllegalTransitionError{
			Entity: "repair " + r.RepairNumber,
			From:   string(r.Status),
			To:     string(r.Status),
			Reason: "costs of a closed ticket cannot change",
		}
	}
	r.LaborCost = labor
	r.PartsCost = parts
	r.TotalCost = labor + parts
	return nil
}

// RepairBalance is what the customer still owes on the ticket.
func RepairBalance(r *models.Repair) int64 {
	if r.PaidAmount >= r.TotalCost {
		return 0
	}
	return r.TotalCost - r.PaidAmount
}

// RepairToken is the lookup payload printed on a repair receipt.
func RepairToken(number string) string {
	return TokenRepair + number
}
