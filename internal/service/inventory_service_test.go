package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

func TestReceive_CashAndCredit(t *testing.T) {
	f := newFixture(t, saleDay)
	supplier := f.supplier("Nhà phân phối Miền Nam")
	phone := f.phone("iPhone 15", 10_000_000)

	cash := f.receive(phone, "356938035643809")
	assert.Equal(t, models.UnitAvailable, cash.Status)
	assert.Equal(t, models.ConditionNew, cash.Condition)
	assert.Equal(t, int64(10_000_000), cash.SellingPrice)
	rows := f.ledgerRows(models.RefStock, cash.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TrxExpense, rows[0].TransactionType)
	assert.Equal(t, int64(8_000_000), rows[0].Amount)

	credit, err := f.inventory().Receive(f.ctx, f.actor, &ReceiveStockRequest{
		ProductID:  phone.ID,
		SupplierID: &supplier.ID,
		IMEI:       ptr(" 356938035643810 "),
		CostPrice:  7_900_000,
		OnCredit:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "356938035643810", *credit.IMEI)
	assert.Empty(t, f.ledgerRows(models.RefStock, credit.ID))

	debts, total, err := f.debts().List(f.ctx, models.DebtFilter{DebtorType: models.DebtorSupplier})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, int64(7_900_000), debts[0].Amount)
	assert.Equal(t, models.RefStock, debts[0].ReferenceType)

	_, err = f.inventory().Receive(f.ctx, f.actor, &ReceiveStockRequest{
		ProductID: phone.ID,
		IMEI:      ptr("356938035643811"),
		CostPrice: 7_900_000,
		OnCredit:  true,
	})
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "supplier_id", invalid.Field)
}

func TestReceiveBatch_DuplicateIMEIRollsBack(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("iPhone 15", 10_000_000)

	_, err := f.inventory().ReceiveBatch(f.ctx, f.actor, []ReceiveStockRequest{
		{ProductID: phone.ID, IMEI: ptr("356938035643809"), CostPrice: 8_000_000},
		{ProductID: phone.ID, IMEI: ptr("356938035643810"), CostPrice: 8_000_000},
		{ProductID: phone.ID, IMEI: ptr("356938035643809"), CostPrice: 8_000_000},
	})
	var dup *rules.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "356938035643809", dup.Value)

	_, total, err := f.inventory().List(f.ctx, models.UnitFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	_, trx, err := f.ledger().List(f.ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, trx)
}

func TestReceive_IMEIUniqueAcrossHistory(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("iPhone 15", 10_000_000)
	unit := f.receive(phone, "356938035643809")

	_, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &unit.ID}},
		PaidAmount: 11_000_000,
	})
	require.NoError(t, err)

	_, err = f.inventory().Receive(f.ctx, f.actor, &ReceiveStockRequest{
		ProductID: phone.ID,
		IMEI:      ptr("356938035643809"),
	})
	var dup *rules.DuplicateKeyError
	assert.ErrorAs(t, err, &dup)
}

func TestReceive_Validation(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("iPhone 15", 10_000_000)

	tests := []struct {
		name  string
		req   ReceiveStockRequest
		field string
	}{
		{"imei required", ReceiveStockRequest{ProductID: phone.ID}, "imei"},
		{"short imei", ReceiveStockRequest{ProductID: phone.ID, IMEI: ptr("3569380")}, "imei"},
		{"bad condition", ReceiveStockRequest{ProductID: phone.ID, IMEI: ptr("356938035643809"), Condition: "broken"}, "condition"},
		{"negative cost", ReceiveStockRequest{ProductID: phone.ID, IMEI: ptr("356938035643809"), CostPrice: -1}, "cost_price"},
		{"bad method", ReceiveStockRequest{ProductID: phone.ID, IMEI: ptr("356938035643809"), CostPrice: 1, PaymentMethod: "barter"}, "payment_method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.inventory().Receive(f.ctx, f.actor, &tt.req)
			var invalid *rules.ValidationError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestUnitTransition(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("iPhone 15", 10_000_000)
	unit := f.receive(phone, "356938035643809")

	u, err := f.inventory().Transition(f.ctx, f.actor, unit.ID, models.UnitReserved)
	require.NoError(t, err)
	assert.Equal(t, models.UnitReserved, u.Status)

	_, err = f.inventory().Transition(f.ctx, f.actor, unit.ID, models.UnitSold)
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)

	u, err = f.inventory().Transition(f.ctx, f.actor, unit.ID, models.UnitAvailable)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, u.Status)

	found, err := f.inventory().GetByIMEI(f.ctx, "356938035643809")
	require.NoError(t, err)
	assert.Equal(t, unit.ID, found.ID)
	assert.Equal(t, "iPhone 15", found.ProductName)
}
