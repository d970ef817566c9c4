package rules

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// PawnTerms are the shop's pawn parameters.
type PawnTerms struct {
	InterestRate float64
	TermDays     int
	LoanRatio    float64
}

// DefaultPawnTerms match the shop's standing policy.
var DefaultPawnTerms = PawnTerms{InterestRate: 0.03, TermDays: 30, LoanRatio: 0.75}

const daysPerInterestMonth = 30

var pawnTransitions = map[models.PawnStatus][]models.PawnStatus{
	models.PawnActive:   {models.PawnRedeemed, models.PawnLiquidated, models.PawnExtended},
	models.PawnExtended: {models.PawnRedeemed, models.PawnLiquidated, models.PawnExtended},
}

// CanTransitionPawn reports whether a stored pawn status may change. overdue is
// derived and is never a stored source or target.
func CanTransitionPawn(from, to models.PawnStatus) bool {
	for _, s := range pawnTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsOpen reports whether the contract still accrues interest.
func IsOpen(c *models.PawnContract) bool {
	return c.Status == models.PawnActive || c.Status == models.PawnExtended
}

// SuggestedLoan is item_value × ratio. It is a suggestion, not a limit.
func SuggestedLoan(itemValue int64, ratio float64) int64 {
	return ApplyRate(itemValue, ratio)
}

// MonthlyInterest is loan × rate.
func MonthlyInterest(c *models.PawnContract) int64 {
	return ApplyRate(c.LoanAmount, c.InterestRate)
}

// OverdueDays is max(0, today − due_date).
func OverdueDays(c *models.PawnContract, today time.Time) int {
	d := DaysBetween(c.DueDate, today)
	if d < 0 {
		return 0
	}
	return d
}

// MonthsElapsed is max(1, overdue_days / 30) as a fraction. At least one
// interest period is always owed.
func MonthsElapsed(overdueDays int) decimal.Decimal {
	months := decimal.NewFromInt(int64(overdueDays)).Div(decimal.NewFromInt(daysPerInterestMonth))
	one := decimal.NewFromInt(1)
	if months.LessThan(one) {
		return one
	}
	return months
}

// AccruedInterest is round(loan × rate × months_elapsed) for the current term.
// Closed contracts accrue nothing.
func AccruedInterest(c *models.PawnContract, today time.Time) int64 {
	if !IsOpen(c) {
		return 0
	}
	months := MonthsElapsed(OverdueDays(c, today))
	return Round(decimal.NewFromInt(c.LoanAmount).
		Mul(decimal.NewFromFloat(c.InterestRate)).
		Mul(months))
}

// CurrentInterest is the accrued interest less what was already collected
// during the current term.
func CurrentInterest(c *models.PawnContract, today time.Time) int64 {
	owed := AccruedInterest(c, today) - c.InterestCredit
	if owed < 0 {
		return 0
	}
	return owed
}

// TotalDue is loan + current interest.
func TotalDue(c *models.PawnContract, today time.Time) int64 {
	if !IsOpen(c) {
		return 0
	}
	return c.LoanAmount + CurrentInterest(c, today)
}

// EffectivePawnStatus reports overdue for an open contract past its due date.
func EffectivePawnStatus(c *models.PawnContract, today time.Time) models.PawnStatus {
	if IsOpen(c) && today.After(DateOf(c.DueDate)) {
		return models.PawnOverdue
	}
	return c.Status
}

// ViewPawn decorates a contract with its live interest figures.
func ViewPawn(c models.PawnContract, today time.Time) models.PawnView {
	return models.PawnView{
		PawnContract:    c,
		EffectiveStatus: EffectivePawnStatus(&c, today),
		OverdueDays:     OverdueDays(&c, today),
		MonthlyInterest: MonthlyInterest(&c),
		CurrentInterest: CurrentInterest(&c, today),
		TotalDue:        TotalDue(&c, today),
	}
}

// PawnApplication is the input to opening a contract.
type PawnApplication struct {
	CustomerID      int
	ItemDescription string
	ItemValue       int64
	LoanAmount      int64
	InterestRate    float64
	ContractDate    time.Time
	DueDate         *time.Time
}

// ValidatePawn checks an application and resolves its due date, which defaults
// to contract date + term days.
func ValidatePawn(a PawnApplication, terms PawnTerms) (time.Time, error) {
	if a.CustomerID <= 0 {
		return time.Time{}, Invalid("customer_id", "customer is required")
	}
	if a.ItemDescription == "" {
		return time.Time{}, Invalid("item_description", "is required")
	}
	if a.ItemValue <= 0 {
		return time.Time{}, Invalid("item_value", "must be > 0")
	}
	if a.LoanAmount <= 0 {
		return time.Time{}, Invalid("loan_amount", "must be > 0")
	}
	if a.InterestRate <= 0 || a.InterestRate >= 1 {
		return time.Time{}, Invalid("interest_rate", "must be a monthly fraction in (0, 1)")
	}
	contractDate := DateOf(a.ContractDate)
	due := AddDays(contractDate, terms.TermDays)
	if a.DueDate != nil {
		due = DateOf(*a.DueDate)
	}
	if due.Before(contractDate) {
		return time.Time{}, Invalid("due_date", "must not be before contract_date")
	}
	return due, nil
}

func pawnIllegal(c *models.PawnContract, to models.PawnStatus, today time.Time, reason string) error {
	return &IllegalTransitionError{
		Entity: "pawn contract " + c.ContractNumber,
		From:   string(EffectivePawnStatus(c, today)),
		To:     string(to),
		Reason: reason,
	}
}

// Redeem closes the contract when payment covers the total due. It returns the
// interest portion of the payment.
func Redeem(c *models.PawnContract, payment int64, today time.Time) (int64, error) {
	if !CanTransitionPawn(c.Status, models.PawnRedeemed) {
		return 0, pawnIllegal(c, models.PawnRedeemed, today, "contract is closed")
	}
	interest := CurrentInterest(c, today)
	due := c.LoanAmount + interest
	if payment < due {
		return 0, &InsufficientPaymentError{Required: due, Paid: payment}
	}
	c.Status = models.PawnRedeemed
	c.PaymentsMade += due
	c.TotalInterest += interest
	c.InterestCredit = 0
	return interest, nil
}

// Extend rolls the contract over one more term. The accrued interest must be
// paid; the new due date runs one term from the later of today and the
// current due date, and interest then accrues as for an active contract.
func Extend(c *models.PawnContract, interestPaid int64, today time.Time, terms PawnTerms) error {
	if !CanTransitionPawn(c.Status, models.PawnExtended) {
		return pawnIllegal(c, models.PawnExtended, today, "contract is closed")
	}
	interest := CurrentInterest(c, today)
	if interestPaid < interest {
		return &InsufficientPaymentError{Required: interest, Paid: interestPaid}
	}
	from := DateOf(c.DueDate)
	if t := DateOf(today); t.After(from) {
		from = t
	}
	c.DueDate = AddDays(from, terms.TermDays)
	c.RenewalCount++
	c.PaymentsMade += interestPaid
	c.TotalInterest += interestPaid
	c.InterestCredit = 0
	c.Status = models.PawnExtended
	return nil
}

// CollectInterest records an interest payment without changing the status or
// the due date. The payment is credited against the interest of the current
// term, so it cannot exceed what is owed today.
func CollectInterest(c *models.PawnContract, amount int64, today time.Time) error {
	if !IsOpen(c) {
		return &IllegalTransitionError{
			Entity: "pawn contract " + c.ContractNumber,
			From:   string(c.Status),
			To:     "interest payment",
			Reason: "contract is closed",
		}
	}
	if amount <= 0 {
		return Invalid("amount", "must be > 0")
	}
	if owed := CurrentInterest(c, today); amount > owed {
		return Invalid("amount", fmt.Sprintf("exceeds interest owed (%d)", owed))
	}
	c.PaymentsMade += amount
	c.TotalInterest += amount
	c.InterestCredit += amount
	return nil
}

// Liquidate forfeits the collateral. No further interest accrues.
func Liquidate(c *models.PawnContract, today time.Time) error {
	if !CanTransitionPawn(c.Status, models.PawnLiquidated) {
		return pawnIllegal(c, models.PawnLiquidated, today, "contract is closed")
	}
	c.Status = models.PawnLiquidated
	return nil
}
