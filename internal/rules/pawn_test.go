package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
)

func newContract() *models.PawnContract {
	return &models.PawnContract{
		ContractNumber: "CD20240101100000",
		ItemValue:      8_000_000,
		LoanAmount:     5_000_000,
		InterestRate:   0.03,
		ContractDate:   Date(2024, 1, 1),
		DueDate:        Date(2024, 1, 31),
		Status:         models.PawnActive,
	}
}

func TestCurrentInterest_FractionalMonths(t *testing.T) {
	c := newContract()
	today := AddDays(c.DueDate, 45)

	assert.Equal(t, 45, OverdueDays(c, today))
	assert.Equal(t, "1.5", MonthsElapsed(45).String())
	assert.Equal(t, int64(225_000), CurrentInterest(c, today))
	assert.Equal(t, int64(5_225_000), TotalDue(c, today))
}

func TestCurrentInterest_FloorsAtOneMonth(t *testing.T) {
	c := newContract()
	for _, today := range []time.Time{c.ContractDate, AddDays(c.DueDate, -1), c.DueDate, AddDays(c.DueDate, 29)} {
		assert.Equal(t, int64(150_000), CurrentInterest(c, today), today.Format("2006-01-02"))
	}
	assert.Equal(t, 0, OverdueDays(c, c.DueDate))
	assert.Equal(t, int64(155_000), CurrentInterest(c, AddDays(c.DueDate, 31)))
}

func TestEffectivePawnStatus(t *testing.T) {
	c := newContract()
	assert.Equal(t, models.PawnActive, EffectivePawnStatus(c, c.DueDate))
	assert.Equal(t, models.PawnOverdue, EffectivePawnStatus(c, AddDays(c.DueDate, 1)))

	c.Status = models.PawnExtended
	assert.Equal(t, models.PawnOverdue, EffectivePawnStatus(c, AddDays(c.DueDate, 1)))

	c.Status = models.PawnRedeemed
	assert.Equal(t, models.PawnRedeemed, EffectivePawnStatus(c, AddDays(c.DueDate, 100)))
	assert.Equal(t, int64(0), CurrentInterest(c, AddDays(c.DueDate, 100)))
}

func TestSuggestedLoan(t *testing.T) {
	assert.Equal(t, int64(6_000_000), SuggestedLoan(8_000_000, 0.75))
	assert.Equal(t, int64(150_000), MonthlyInterest(newContract()))
}

func TestValidatePawn(t *testing.T) {
	app := PawnApplication{
		CustomerID:      1,
		ItemDescription: "iPhone 13 128GB",
		ItemValue:       8_000_000,
		LoanAmount:      5_000_000,
		InterestRate:    0.03,
		ContractDate:    time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC),
	}
	due, err := ValidatePawn(app, DefaultPawnTerms)
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 1, 31), due)

	early := Date(2023, 12, 31)
	app.DueDate = &early
	_, err = ValidatePawn(app, DefaultPawnTerms)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	app.DueDate = nil
	app.LoanAmount = 0
	_, err = ValidatePawn(app, DefaultPawnTerms)
	assert.True(t, errors.As(err, &verr))
}

func TestRedeem(t *testing.T) {
	c := newContract()
	today := AddDays(c.DueDate, 45)

	var short *InsufficientPaymentError
	_, err := Redeem(c, 5_224_999, today)
	require.True(t, errors.As(err, &short))
	assert.Equal(t, int64(5_225_000), short.Required)
	assert.Equal(t, models.PawnActive, c.Status)

	interest, err := Redeem(c, 5_300_000, today)
	require.NoError(t, err)
	assert.Equal(t, int64(225_000), interest)
	assert.Equal(t, models.PawnRedeemed, c.Status)
	assert.Equal(t, int64(5_225_000), c.PaymentsMade)

	var illegal *IllegalTransitionError
	_, err = Redeem(c, 9_000_000, today)
	assert.True(t, errors.As(err, &illegal))
	assert.True(t, errors.As(Liquidate(c, today), &illegal))
}

func TestExtend(t *testing.T) {
	c := newContract()

	var short *InsufficientPaymentError
	err := Extend(c, 100_000, c.DueDate, DefaultPawnTerms)
	require.True(t, errors.As(err, &short))

	require.NoError(t, Extend(c, 150_000, c.DueDate, DefaultPawnTerms))
	assert.Equal(t, models.PawnExtended, c.Status)
	assert.Equal(t, 1, c.RenewalCount)
	assert.Equal(t, Date(2024, 3, 1), c.DueDate)
	assert.Equal(t, int64(150_000), c.TotalInterest)

	// overdue extension runs from the day it is paid
	today := AddDays(c.DueDate, 10)
	require.NoError(t, Extend(c, CurrentInterest(c, today), today, DefaultPawnTerms))
	assert.Equal(t, AddDays(today, 30), c.DueDate)
	assert.Equal(t, 2, c.RenewalCount)
	assert.Equal(t, models.PawnExtended, EffectivePawnStatus(c, today))
}

func TestCollectInterest_CreditsCurrentTerm(t *testing.T) {
	c := newContract()
	mid := Date(2024, 1, 20)

	require.NoError(t, CollectInterest(c, 150_000, mid))
	assert.Equal(t, int64(150_000), c.InterestCredit)
	assert.Zero(t, CurrentInterest(c, c.DueDate))
	assert.Equal(t, int64(5_000_000), TotalDue(c, c.DueDate))

	var verr *ValidationError
	assert.True(t, errors.As(CollectInterest(c, 1, mid), &verr))

	// 45 days overdue accrues 1.5 months, one of which is already paid
	late := AddDays(c.DueDate, 45)
	assert.Equal(t, int64(225_000), AccruedInterest(c, late))
	assert.Equal(t, int64(75_000), CurrentInterest(c, late))

	interest, err := Redeem(c, 5_075_000, late)
	require.NoError(t, err)
	assert.Equal(t, int64(75_000), interest)
	assert.Equal(t, int64(225_000), c.TotalInterest)
	assert.Equal(t, int64(5_225_000), c.PaymentsMade)
	assert.Zero(t, c.InterestCredit)
}

func TestCollectInterest_ClosedContract(t *testing.T) {
	c := newContract()
	c.Status = models.PawnRedeemed

	var illegal *IllegalTransitionError
	require.True(t, errors.As(CollectInterest(c, 100_000, c.DueDate), &illegal))
	assert.Equal(t, "redeemed", illegal.From)
	assert.Equal(t, "interest payment", illegal.To)
	assert.Equal(t, "pawn contract CD20240101100000 cannot move from redeemed to interest payment: contract is closed", illegal.Error())
}

func TestExtend_ResetsInterestCredit(t *testing.T) {
	c := newContract()
	require.NoError(t, CollectInterest(c, 100_000, Date(2024, 1, 10)))

	var short *InsufficientPaymentError
	require.True(t, errors.As(Extend(c, 40_000, c.DueDate, DefaultPawnTerms), &short))
	assert.Equal(t, int64(50_000), short.Required)

	require.NoError(t, Extend(c, 50_000, c.DueDate, DefaultPawnTerms))
	assert.Zero(t, c.InterestCredit)
	assert.Equal(t, int64(150_000), c.TotalInterest)
	assert.Equal(t, int64(150_000), CurrentInterest(c, c.DueDate))
}

func TestLiquidate(t *testing.T) {
	c := newContract()
	require.NoError(t, Liquidate(c, AddDays(c.DueDate, 60)))
	assert.Equal(t, models.PawnLiquidated, c.Status)
	assert.Equal(t, int64(0), TotalDue(c, AddDays(c.DueDate, 90)))

	var illegal *IllegalTransitionError
	assert.True(t, errors.As(Extend(c, 1_000_000, c.DueDate, DefaultPawnTerms), &illegal))
}

func TestCanTransitionPawn(t *testing.T) {
	assert.True(t, CanTransitionPawn(models.PawnActive, models.PawnRedeemed))
	assert.True(t, CanTransitionPawn(models.PawnExtended, models.PawnExtended))
	assert.False(t, CanTransitionPawn(models.PawnActive, models.PawnOverdue))
	assert.False(t, CanTransitionPawn(models.PawnRedeemed, models.PawnActive))
	assert.False(t, CanTransitionPawn(models.PawnLiquidated, models.PawnRedeemed))
}
