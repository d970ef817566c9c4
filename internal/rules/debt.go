package rules

import (
	"time"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// SettleDebt applies a payment to a debt. The amount must be positive and no
// more than what is outstanding; the debt is settled once fully paid.
func SettleDebt(d *models.Debt, amount int64, now time.Time) error {
	if d.Status == models.DebtSettled {
		return &IllegalTransitionError{
			Entity: "debt",
			From:   string(d.Status),
			To:     string(models.DebtSettled),
			Reason: "debt is already settled",
		}
	}
	if amount <= 0 {
		return Invalid("amount", "must be > 0")
	}
	if outstanding := d.Outstanding(); amount > outstanding {
		return Invalid("amount", "exceeds outstanding balance %d", outstanding)
	}
	d.PaidAmount += amount
	if d.Outstanding() == 0 {
		d.Status = models.DebtSettled
		t := StampOf(now)
		d.SettledAt = &t
	}
	return nil
}

// DebtLedgerType is the ledger direction of a debt payment: collecting from a
// customer is income, paying a supplier is an expense.
func DebtLedgerType(d *models.Debt) models.TransactionType {
	if d.DebtorType == models.DebtorSupplier {
		return models.TrxExpense
	}
	return models.TrxIncome
}
