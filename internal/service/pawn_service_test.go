package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

var pawnDay = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func openPawn(t *testing.T, f *fixture, loan int64) *models.PawnView {
	t.Helper()
	customer := f.customer("Phạm Minh Cường")
	v, err := f.pawns().Open(f.ctx, f.actor, &OpenPawnRequest{
		CustomerID:      customer.ID,
		ItemDescription: "iPhone 13 Pro 256GB",
		IMEI:            ptr("356938035643809"),
		ItemValue:       8_000_000,
		LoanAmount:      loan,
	})
	require.NoError(t, err)
	return v
}

func TestPawnOpen_DisbursesLoan(t *testing.T) {
	f := newFixture(t, pawnDay)
	v := openPawn(t, f, 5_000_000)

	assert.Equal(t, "CD20240301100000", v.ContractNumber)
	assert.Equal(t, models.PawnActive, v.Status)
	assert.True(t, rules.Date(2024, 3, 31).Equal(v.DueDate))
	assert.Equal(t, int64(150_000), v.MonthlyInterest)
	// one month is always owed
	assert.Equal(t, int64(150_000), v.CurrentInterest)
	assert.Equal(t, int64(5_150_000), v.TotalDue)

	rows := f.ledgerRows(models.RefPawnLoan, v.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TrxExpense, rows[0].TransactionType)
	assert.Equal(t, int64(5_000_000), rows[0].Amount)
}

func TestPawnOpen_SuggestsLoanAndValidates(t *testing.T) {
	f := newFixture(t, pawnDay)
	customer := f.customer("Đỗ Hải")

	v, err := f.pawns().Open(f.ctx, f.actor, &OpenPawnRequest{
		CustomerID:      customer.ID,
		ItemDescription: "Galaxy S23",
		ItemValue:       10_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7_500_000), v.LoanAmount)

	suggested, err := f.pawns().SuggestLoan(10_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(7_500_000), suggested)

	_, err = f.pawns().Open(f.ctx, f.actor, &OpenPawnRequest{
		CustomerID:      customer.ID,
		ItemDescription: "Galaxy S23",
		ItemValue:       10_000_000,
		IMEI:            ptr("12345"),
	})
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "imei", invalid.Field)

	_, err = f.pawns().Open(f.ctx, f.actor, &OpenPawnRequest{
		CustomerID:      9999,
		ItemDescription: "Galaxy S23",
		ItemValue:       10_000_000,
	})
	assert.True(t, rules.IsNotFound(err))
}

func TestPawnRedeem_OverdueInterest(t *testing.T) {
	f := newFixture(t, pawnDay)
	v := openPawn(t, f, 5_000_000)

	// 45 days past the due date
	f.at(time.Date(2024, 5, 15, 16, 0, 0, 0, time.UTC))
	detail, err := f.pawns().Get(f.ctx, v.ContractNumber)
	require.NoError(t, err)
	assert.Equal(t, models.PawnOverdue, detail.EffectiveStatus)
	assert.Equal(t, models.PawnActive, detail.Status)
	assert.Equal(t, 45, detail.OverdueDays)
	assert.Equal(t, int64(225_000), detail.CurrentInterest)
	assert.Equal(t, int64(5_225_000), detail.TotalDue)

	_, err = f.pawns().Redeem(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 5_200_000})
	var short *rules.InsufficientPaymentError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, int64(5_225_000), short.Required)

	redeemed, err := f.pawns().Redeem(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 5_300_000})
	require.NoError(t, err)
	assert.Equal(t, models.PawnRedeemed, redeemed.Status)
	assert.Equal(t, models.PawnRedeemed, redeemed.EffectiveStatus)
	assert.Equal(t, int64(5_225_000), redeemed.PaymentsMade)
	assert.Equal(t, int64(225_000), redeemed.TotalInterest)
	assert.Zero(t, redeemed.TotalDue)
	assert.NotNil(t, redeemed.ClosedAt)

	rows := f.ledgerRows(models.RefPawnRedeem, v.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5_225_000), rows[0].Amount)

	detail, err = f.pawns().Get(f.ctx, v.ContractNumber)
	require.NoError(t, err)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, models.PawnPaymentRedemption, detail.Payments[0].PaymentType)
	assert.Equal(t, int64(5_000_000), detail.Payments[0].PrincipalAmount)

	_, err = f.pawns().Redeem(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 5_300_000})
	var illegal *rules.IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)
}

func TestPawnExtend(t *testing.T) {
	f := newFixture(t, pawnDay)
	v := openPawn(t, f, 5_000_000)

	f.at(time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC))
	_, err := f.pawns().Extend(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 100_000})
	var short *rules.InsufficientPaymentError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, int64(150_000), short.Required)

	extended, err := f.pawns().Extend(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 150_000})
	require.NoError(t, err)
	assert.Equal(t, models.PawnExtended, extended.Status)
	assert.Equal(t, 1, extended.RenewalCount)
	assert.True(t, rules.Date(2024, 4, 30).Equal(extended.DueDate))
	assert.Equal(t, int64(150_000), extended.TotalInterest)

	// an overdue contract rolls over from today
	f.at(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	extended, err = f.pawns().Extend(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 150_000})
	require.NoError(t, err)
	assert.Equal(t, 2, extended.RenewalCount)
	assert.True(t, rules.Date(2024, 6, 9).Equal(extended.DueDate))

	rows := f.ledgerRows(models.RefPawnInterest, v.ID)
	assert.Len(t, rows, 2)
}

func TestPawnCollectInterestThenRedeem(t *testing.T) {
	f := newFixture(t, pawnDay)
	v := openPawn(t, f, 5_000_000)

	f.at(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))
	_, err := f.pawns().CollectInterest(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 200_000})
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "amount", invalid.Field)

	collected, err := f.pawns().CollectInterest(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 150_000})
	require.NoError(t, err)
	assert.Equal(t, models.PawnActive, collected.Status)
	assert.True(t, rules.Date(2024, 3, 31).Equal(collected.DueDate))
	assert.Zero(t, collected.CurrentInterest)

	f.at(time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC))
	detail, err := f.pawns().Get(f.ctx, v.ContractNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), detail.InterestCredit)
	assert.Zero(t, detail.CurrentInterest)
	assert.Equal(t, int64(5_000_000), detail.TotalDue)

	redeemed, err := f.pawns().Redeem(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 5_000_000})
	require.NoError(t, err)
	assert.Equal(t, models.PawnRedeemed, redeemed.Status)
	assert.Equal(t, int64(150_000), redeemed.TotalInterest)
	assert.Equal(t, int64(5_150_000), redeemed.PaymentsMade)

	rows := f.ledgerRows(models.RefPawnRedeem, v.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5_000_000), rows[0].Amount)
	interest := f.ledgerRows(models.RefPawnInterest, v.ID)
	require.Len(t, interest, 1)
	assert.Equal(t, int64(150_000), interest[0].Amount)
}

func TestPawnLiquidate(t *testing.T) {
	f := newFixture(t, pawnDay)
	v := openPawn(t, f, 5_000_000)

	f.at(time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC))
	_, err := f.pawns().CollectInterest(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 100_000})
	require.NoError(t, err)

	liquidated, err := f.pawns().Liquidate(f.ctx, f.actor, v.ContractNumber)
	require.NoError(t, err)
	assert.Equal(t, models.PawnLiquidated, liquidated.Status)
	assert.Zero(t, liquidated.CurrentInterest)
	assert.Empty(t, f.ledgerRows(models.RefPawnRedeem, v.ID))

	_, err = f.pawns().CollectInterest(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 100_000})
	var illegal *rules.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	_, err = f.pawns().Extend(f.ctx, f.actor, v.ContractNumber, &PawnPaymentRequest{Amount: 150_000})
	require.ErrorAs(t, err, &illegal)
}

func TestPawnList_OverdueFilter(t *testing.T) {
	f := newFixture(t, pawnDay)
	openPawn(t, f, 5_000_000)
	f.at(time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))
	openPawn(t, f, 2_000_000)

	f.at(time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC))
	list, total, err := f.pawns().List(f.ctx, models.PawnFilter{Status: models.PawnOverdue})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(5_000_000), list[0].LoanAmount)

	summary, err := f.reports().Pawns(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Contracts)
	assert.Equal(t, 1, summary.ByStatus[models.PawnOverdue])
	assert.Equal(t, 1, summary.ByStatus[models.PawnActive])
	assert.Equal(t, int64(7_000_000), summary.OpenPrincipal)

	alerts, err := f.reports().Alerts(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, alerts.OverduePawns)
}
