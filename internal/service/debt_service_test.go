package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

func TestDebtSettle_FlipsSalePaymentStatus(t *testing.T) {
	f := newFixture(t, saleDay)
	customer := f.customer("Trần Văn An")
	phone := f.phone("iPhone 15", 10_000_000)
	unit := f.receive(phone, "356938035643809")

	res, err := f.sales().Checkout(f.ctx, f.actor, &CheckoutRequest{
		CustomerID:           &customer.ID,
		Items:                []CartItem{{UnitID: &unit.ID}},
		DiscountAmount:       500_000,
		PaidAmount:           5_000_000,
		AcknowledgeShortfall: true,
	})
	require.NoError(t, err)
	debtID := res.Debt.ID

	d, err := f.debts().Settle(f.ctx, f.actor, debtID, &SettleDebtRequest{Amount: 450_000})
	require.NoError(t, err)
	assert.Equal(t, models.DebtOutstanding, d.Status)
	assert.Equal(t, int64(5_000_000), d.Outstanding())
	sale, err := f.sales().Get(f.ctx, res.Sale.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(5_450_000), sale.PaidAmount)
	assert.Equal(t, models.PaymentPartial, sale.PaymentStatus)

	_, err = f.debts().Settle(f.ctx, f.actor, debtID, &SettleDebtRequest{Amount: 5_000_001})
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)

	d, err = f.debts().Settle(f.ctx, f.actor, debtID, &SettleDebtRequest{Amount: 5_000_000, PaymentMethod: models.MethodTransfer})
	require.NoError(t, err)
	assert.Equal(t, models.DebtSettled, d.Status)
	assert.NotNil(t, d.SettledAt)

	sale, err = f.sales().Get(f.ctx, res.Sale.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, sale.TotalAmount, sale.PaidAmount)
	assert.Equal(t, models.PaymentPaid, sale.PaymentStatus)

	rows := f.ledgerRows(models.RefDebt, debtID)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, models.TrxIncome, r.TransactionType)
	}
	assert.Equal(t, models.MethodTransfer, rows[1].PaymentMethod)

	_, err = f.debts().Settle(f.ctx, f.actor, debtID, &SettleDebtRequest{Amount: 1})
	var illegal *rules.IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)

	report, err := f.reports().CustomerDebts(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Outstanding)
}

func TestDebtCreate_Manual(t *testing.T) {
	f := newFixture(t, saleDay)
	supplier := f.supplier("Công ty Phân phối Di Động")
	customer := f.customer("Võ Thị Hoa")

	d, err := f.debts().Create(f.ctx, f.actor, &CreateDebtRequest{
		DebtorType:  models.DebtorSupplier,
		DebtorID:    supplier.ID,
		Amount:      2_000_000,
		Description: "Phụ kiện tháng 6",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RefManual, d.ReferenceType)
	assert.True(t, rules.Date(2024, 7, 10).Equal(d.DueDate))

	_, err = f.debts().Settle(f.ctx, f.actor, d.ID, &SettleDebtRequest{Amount: 2_000_000})
	require.NoError(t, err)
	rows := f.ledgerRows(models.RefDebt, d.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.TrxExpense, rows[0].TransactionType)

	_, err = f.debts().Create(f.ctx, f.actor, &CreateDebtRequest{
		DebtorType:  models.DebtorCustomer,
		DebtorID:    customer.ID,
		Amount:      300_000,
		Description: "Sửa màn hình trả sau",
	})
	require.NoError(t, err)

	report, err := f.reports().CustomerDebts(f.ctx)
	require.NoError(t, err)
	require.Len(t, report.Customers, 1)
	assert.Equal(t, int64(300_000), report.Outstanding)

	_, err = f.debts().Create(f.ctx, f.actor, &CreateDebtRequest{
		DebtorType:  "bank",
		DebtorID:    1,
		Amount:      1,
		Description: "x",
	})
	var invalid *rules.ValidationError
	assert.ErrorAs(t, err, &invalid)

	list, total, err := f.debts().List(f.ctx, models.DebtFilter{Status: models.DebtOutstanding})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.DebtorCustomer, list[0].DebtorType)
}
