package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/database"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/sse"
)

var testShop = config.ShopConfig{
	Name:                  "Test shop",
	VATRate:               0.10,
	DefaultWarrantyMonths: 12,
	RepairWarrantyMonths:  3,
	RepairEstimateDays:    3,
	PawnInterestRate:      0.03,
	PawnTermDays:          30,
	PawnLoanRatio:         0.75,
	LowStockThreshold:     5,
	DebtDueDays:           30,
	WarrantyExpiringDays:  30,
}

// fixture is an in-memory shop with one cashier. Services are built on
// demand so tests can move the clock between calls.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *repository.Store
	clock rules.FixedClock
	actor models.Actor
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: repository.NewStore(db),
		clock: rules.FixedClock{T: now},
	}
	staff, err := f.staffSvc().Create(f.ctx, &CreateStaffRequest{
		Username: "cashier",
		Password: "cashier-pass",
		FullName: "Nguyễn Thu Ngân",
		Role:     models.RoleCashier,
	})
	require.NoError(t, err)
	f.actor = models.Actor{StaffID: staff.ID, Role: staff.Role}
	return f
}

func (f *fixture) at(now time.Time) { f.clock = rules.FixedClock{T: now} }

func (f *fixture) catalog() *CatalogService {
	return NewCatalogService(f.store, f.clock, testShop.DefaultWarrantyMonths)
}
func (f *fixture) inventory() *InventoryService {
	return NewInventoryService(f.store, f.clock, testShop.DebtDueDays)
}
func (f *fixture) sales() *SaleService {
	return NewSaleService(f.store, f.clock, testShop, sse.NopNotifier{})
}
func (f *fixture) warranties() *WarrantyService {
	return NewWarrantyService(f.store, f.clock, nil, testShop.WarrantyExpiringDays)
}
func (f *fixture) pawns() *PawnService {
	return NewPawnService(f.store, f.clock, testShop, sse.NopNotifier{})
}
func (f *fixture) repairs() *RepairService {
	return NewRepairService(f.store, f.clock, testShop, sse.NopNotifier{})
}
func (f *fixture) debts() *DebtService { return NewDebtService(f.store, f.clock, testShop.DebtDueDays) }
func (f *fixture) ledger() *LedgerService {
	return NewLedgerService(f.store, f.clock, time.UTC)
}
func (f *fixture) reports() *ReportService {
	return NewReportService(f.store, f.clock, time.UTC, testShop)
}
func (f *fixture) staffSvc() *StaffService { return NewStaffService(f.store, f.clock) }

func (f *fixture) customer(name string) *models.Customer {
	f.t.Helper()
	c, err := f.catalog().CreateCustomer(f.ctx, &CustomerRequest{Name: &name})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) supplier(name string) *models.Supplier {
	f.t.Helper()
	s, err := f.catalog().CreateSupplier(f.ctx, &SupplierRequest{Name: &name})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) phone(name string, price int64) *models.Product {
	f.t.Helper()
	p, err := f.catalog().CreateProduct(f.ctx, &ProductRequest{
		Name:         name,
		Brand:        "Apple",
		CostPrice:    price * 8 / 10,
		SellingPrice: price,
	})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) accessory(name string, price int64) *models.Product {
	f.t.Helper()
	track := false
	months := 0
	p, err := f.catalog().CreateProduct(f.ctx, &ProductRequest{
		Name:           name,
		Brand:          "Anker",
		SellingPrice:   price,
		TrackIMEI:      &track,
		WarrantyMonths: &months,
	})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) receive(p *models.Product, imei string) *models.InventoryUnit {
	f.t.Helper()
	req := &ReceiveStockRequest{ProductID: p.ID, CostPrice: p.CostPrice}
	if imei != "" {
		req.IMEI = &imei
	}
	u, err := f.inventory().Receive(f.ctx, f.actor, req)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) ledgerRows(ref models.ReferenceType, id int) []models.Transaction {
	f.t.Helper()
	rows, err := f.store.Transactions.ByReference(f.ctx, ref, id)
	require.NoError(f.t, err)
	return rows
}

func ptr[T any](v T) *T { return &v }
