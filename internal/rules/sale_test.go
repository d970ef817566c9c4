package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
)

func intPtr(v int) *int { return &v }

func TestPriceCart_TaxAfterDiscount(t *testing.T) {
	lines := []CartLine{{ProductID: 1, UnitID: intPtr(7), Quantity: 1, UnitPrice: 10_000_000}}

	inv, err := PriceCart(lines, 500_000, 0.10)
	require.NoError(t, err)

	assert.Equal(t, int64(10_000_000), inv.Subtotal)
	assert.Equal(t, int64(950_000), inv.TaxAmount)
	assert.Equal(t, int64(10_450_000), inv.TotalAmount)
}

func TestPriceCart_TotalIdentity(t *testing.T) {
	tests := []struct {
		name     string
		lines    []CartLine
		discount int64
		vat      float64
	}{
		{"single accessory", []CartLine{{ProductID: 1, Quantity: 3, UnitPrice: 149_999}}, 0, 0.10},
		{"mixed cart", []CartLine{
			{ProductID: 1, UnitID: intPtr(1), Quantity: 1, UnitPrice: 7_990_000},
			{ProductID: 2, Quantity: 2, UnitPrice: 255_555},
		}, 123_457, 0.10},
		{"zero vat", []CartLine{{ProductID: 3, Quantity: 1, UnitPrice: 99_999}}, 9, 0},
		{"odd rate", []CartLine{{ProductID: 3, Quantity: 1, UnitPrice: 1_005}}, 0, 0.08},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := PriceCart(tt.lines, tt.discount, tt.vat)
			require.NoError(t, err)
			assert.Equal(t, inv.Subtotal-inv.DiscountAmount+inv.TaxAmount, inv.TotalAmount)
			assert.Equal(t, ApplyRate(inv.Subtotal-inv.DiscountAmount, tt.vat), inv.TaxAmount)
		})
	}
}

func TestPriceCart_RoundsHalfUp(t *testing.T) {
	inv, err := PriceCart([]CartLine{{ProductID: 1, Quantity: 1, UnitPrice: 15}}, 0, 0.10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inv.TaxAmount)
}

func TestPriceCart_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		lines    []CartLine
		discount int64
	}{
		{"empty cart", nil, 0},
		{"zero quantity", []CartLine{{ProductID: 1, Quantity: 0, UnitPrice: 10}}, 0},
		{"negative price", []CartLine{{ProductID: 1, Quantity: 1, UnitPrice: -1}}, 0},
		{"discount over subtotal", []CartLine{{ProductID: 1, Quantity: 1, UnitPrice: 10}}, 11},
		{"negative discount", []CartLine{{ProductID: 1, Quantity: 1, UnitPrice: 10}}, -1},
		{"unit twice", []CartLine{
			{ProductID: 1, UnitID: intPtr(5), Quantity: 1, UnitPrice: 10},
			{ProductID: 1, UnitID: intPtr(5), Quantity: 1, UnitPrice: 10},
		}, 0},
		{"serialized quantity", []CartLine{{ProductID: 1, UnitID: intPtr(5), Quantity: 2, UnitPrice: 10}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceCart(tt.lines, tt.discount, 0.10)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
		})
	}
}

func TestCartLine_LineTotal(t *testing.T) {
	l := CartLine{Quantity: 3, UnitPrice: 200_000, DiscountAmount: 50_000}
	assert.Equal(t, int64(550_000), l.LineTotal())
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, models.PaymentPaid, PaymentStatusFor(100, 100))
	assert.Equal(t, models.PaymentPaid, PaymentStatusFor(150, 100))
	assert.Equal(t, models.PaymentPartial, PaymentStatusFor(99, 100))
	assert.Equal(t, models.PaymentPartial, PaymentStatusFor(0, 100))
}

func TestChangeAndAmountOwed(t *testing.T) {
	assert.Equal(t, int64(50_000), Change(10_500_000, 10_450_000))
	assert.Equal(t, int64(-450_000), Change(10_000_000, 10_450_000))
	assert.Equal(t, int64(450_000), AmountOwed(10_000_000, 10_450_000))
	assert.Equal(t, int64(0), AmountOwed(10_500_000, 10_450_000))
}

func TestCheckPayment(t *testing.T) {
	customer := intPtr(3)

	assert.NoError(t, CheckPayment(100, 100, false, nil))

	var short *InsufficientPaymentError
	err := CheckPayment(60, 100, false, customer)
	require.True(t, errors.As(err, &short))
	assert.Equal(t, int64(100), short.Required)
	assert.Equal(t, int64(60), short.Paid)

	var verr *ValidationError
	assert.True(t, errors.As(CheckPayment(60, 100, true, nil), &verr))
	assert.True(t, errors.As(CheckPayment(-1, 100, true, customer), &verr))

	assert.NoError(t, CheckPayment(60, 100, true, customer))
}

func TestMonthlyInstallment(t *testing.T) {
	p, err := MonthlyInstallment(12_000_000, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), p)

	p, err = MonthlyInstallment(10_000_000, 0.02, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1_785_258), p)

	_, err = MonthlyInstallment(1_000, 0, 0)
	assert.Error(t, err)
}
