package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

var saleDay = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func TestCheckout_DiscountTaxDebtAndWarranty(t *testing.T) {
	f := newFixture(t, saleDay)
	customer := f.customer("Trần Văn An")
	phone := f.phone("iPhone 15", 10_000_000)
	unit := f.receive(phone, "356938035643809")

	imei := "356938035643809"
	res, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		CustomerID:           &customer.ID,
		Items:                []CartItem{{IMEI: &imei}},
		DiscountAmount:       500_000,
		PaidAmount:           5_000_000,
		AcknowledgeShortfall: true,
	})
	require.NoError(t, err)

	sale := res.Sale
	assert.Equal(t, int64(10_000_000), sale.Subtotal)
	assert.Equal(t, int64(950_000), sale.TaxAmount)
	assert.Equal(t, int64(10_450_000), sale.TotalAmount)
	assert.Equal(t, sale.Subtotal-sale.DiscountAmount+sale.TaxAmount, sale.TotalAmount)
	assert.Equal(t, int64(5_000_000), sale.PaidAmount)
	assert.Equal(t, models.PaymentPartial, sale.PaymentStatus)
	assert.Equal(t, int64(5_450_000), res.AmountOwed)
	assert.Equal(t, int64(-5_450_000), res.Change)

	require.NotNil(t, res.Debt)
	assert.Equal(t, models.DebtorCustomer, res.Debt.DebtorType)
	assert.Equal(t, customer.ID, res.Debt.DebtorID)
	assert.Equal(t, int64(5_450_000), res.Debt.Amount)
	assert.True(t, rules.Date(2024, 7, 10).Equal(res.Debt.DueDate))

	require.Len(t, sale.Warranties, 1)
	w := sale.Warranties[0]
	assert.Equal(t, imei, *w.IMEI)
	assert.True(t, rules.Date(2024, 6, 10).Equal(w.StartDate))
	assert.True(t, rules.Date(2025, 6, 10).Equal(w.EndDate))
	assert.Equal(t, rules.WarrantyToken(w.WarrantyNumber), w.LookupToken)

	sold, err := f.inventory().Get(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitSold, sold.Status)

	income := f.ledgerRows(models.RefSale, sale.ID)
	require.Len(t, income, 1)
	assert.Equal(t, models.TrxIncome, income[0].TransactionType)
	assert.Equal(t, int64(5_000_000), income[0].Amount)

	stored, err := f.sales().Get(f.ctx, sale.InvoiceNumber)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Len(t, stored.Warranties, 1)
	require.Len(t, stored.Debts, 1)
	assert.Equal(t, int64(5_450_000), stored.Debts[0].Amount)
	assert.Equal(t, "HD20240610093000", stored.InvoiceNumber)
}

func TestCheckout_CashChangeAndNoDebt(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("Galaxy A55", 9_000_000)
	unit := f.receive(phone, "490154203237518")

	res, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &unit.ID}},
		PaidAmount: 10_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9_900_000), res.Sale.TotalAmount)
	assert.Equal(t, int64(9_900_000), res.Sale.PaidAmount)
	assert.Equal(t, int64(100_000), res.Change)
	assert.Equal(t, models.PaymentPaid, res.Sale.PaymentStatus)
	assert.Nil(t, res.Debt)
}

func TestCheckout_ShortfallRules(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("Redmi 13", 4_000_000)
	unit := f.receive(phone, "353918057654321")

	_, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &unit.ID}},
		PaidAmount: 1_000_000,
	})
	var short *rules.InsufficientPaymentError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, int64(4_400_000), short.Required)

	_, err = f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:                []CartItem{{UnitID: &unit.ID}},
		PaidAmount:           1_000_000,
		AcknowledgeShortfall: true,
	})
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "customer_id", invalid.Field)

	still, err := f.inventory().Get(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, still.Status)
}

func TestCheckout_Installment(t *testing.T) {
	f := newFixture(t, saleDay)
	customer := f.customer("Lê Thị Bình")
	phone := f.phone("iPhone 15", 10_000_000)
	unit := f.receive(phone, "356938035643810")

	res, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		CustomerID:        &customer.ID,
		Items:             []CartItem{{UnitID: &unit.ID}},
		PaidAmount:        2_000_000,
		PaymentMethod:     models.MethodInstallment,
		InstallmentMonths: 6,
	})
	require.NoError(t, err)
	assert.True(t, res.Sale.IsInstallment)
	assert.Equal(t, int64(9_000_000), res.AmountOwed)
	assert.Equal(t, int64(1_500_000), res.Sale.MonthlyPayment)
}

func TestCheckout_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("Pixel 8", 12_000_000)
	first := f.receive(phone, "359876543210987")
	second := f.receive(phone, "359876543210989")

	_, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &second.ID}},
		PaidAmount: 13_200_000,
	})
	require.NoError(t, err)

	// the second line fails after the sale row and the first unit are written
	_, err = f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &first.ID}, {UnitID: &second.ID}},
		PaidAmount: 30_000_000,
	})
	var illegal *rules.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)

	unit, err := f.inventory().Get(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, unit.Status)
	_, total, err := f.sales().List(f.ctx, models.SaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	_, wTotal, err := f.warranties().List(f.ctx, models.WarrantyFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, wTotal)
	rows, total, err := f.ledger().List(f.ctx, models.TransactionFilter{Type: models.TrxIncome})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, int64(13_200_000), rows[0].Amount)
}

func TestCheckout_UnknownUnit(t *testing.T) {
	f := newFixture(t, saleDay)
	missing := 9999
	_, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &missing}},
		PaidAmount: 1,
	})
	assert.True(t, rules.IsNotFound(err))
}

func TestCheckout_SoldUnitCannotBeSoldAgain(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("Pixel 8", 12_000_000)
	unit := f.receive(phone, "359876543210988")
	req := &CheckoutRequest{Items: []CartItem{{UnitID: &unit.ID}}, PaidAmount: 13_200_000}

	_, err := f.sales().Checkout(f.ctx, f.actor, req)
	require.NoError(t, err)

	_, err = f.sales().Checkout(f.ctx, f.actor, req)
	var illegal *rules.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, string(models.UnitSold), illegal.From)
}

func TestCheckout_AccessoriesAllocateOldestUnits(t *testing.T) {
	f := newFixture(t, saleDay)
	charger := f.accessory("Sạc nhanh 20W", 300_000)
	for i := 0; i < 3; i++ {
		f.receive(charger, "")
	}

	res, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{ProductID: charger.ID, Quantity: 2}},
		PaidAmount: 660_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600_000), res.Sale.Subtotal)
	assert.Empty(t, res.Sale.Warranties)

	left, err := f.store.Units.CountAvailable(f.ctx, charger.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	_, err = f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{ProductID: charger.ID, Quantity: 2}},
		PaidAmount: 660_000,
	})
	var illegal *rules.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	left, err = f.store.Units.CountAvailable(f.ctx, charger.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, left)
}

func TestCheckout_LastUnitFlagsLowStock(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("Nokia G42", 3_000_000)
	unit := f.receive(phone, "351234567890123")

	_, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		Items:      []CartItem{{UnitID: &unit.ID}},
		PaidAmount: 3_300_000,
	})
	require.NoError(t, err)

	report, err := f.reports().Stock(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, report.Products, 1)
	row := report.Products[0]
	assert.Equal(t, phone.ID, row.ProductID)
	assert.Zero(t, row.AvailableCount)
	assert.True(t, row.IsLowStock)
	assert.Equal(t, rules.UrgencyOut, row.Urgency)
}

func TestQuote_WritesNothing(t *testing.T) {
	f := newFixture(t, saleDay)
	phone := f.phone("iPhone 15", 10_000_000)
	unit := f.receive(phone, "356938035643811")

	q, err := f.sales().Quote(f.ctx, &CheckoutRequest{
		Items:          []CartItem{{UnitID: &unit.ID}},
		DiscountAmount: 500_000,
		PaidAmount:     11_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10_450_000), q.TotalAmount)
	assert.Equal(t, int64(550_000), q.Change)

	still, err := f.inventory().Get(f.ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UnitAvailable, still.Status)
}
