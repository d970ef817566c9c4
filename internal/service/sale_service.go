package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/sse"
)

// SaleService prices carts and runs checkout.
type SaleService struct {
	store    *repository.Store
	clock    rules.Clock
	shop     config.ShopConfig
	notifier sse.Notifier
}

// NewSaleService constructs a SaleService.
func NewSaleService(store *repository.Store, clock rules.Clock, shop config.ShopConfig, notifier sse.Notifier) *SaleService {
	return &SaleService{store: store, clock: clock, shop: shop, notifier: notifier}
}

// CartItem is one requested line. A serialized unit is picked by UnitID or
// IMEI; otherwise Quantity non-serialized units of ProductID are allocated.
type CartItem struct {
	ProductID      int     `json:"productId"`
	UnitID         *int    `json:"unitId"`
	IMEI           *string `json:"imei"`
	Quantity       int     `json:"quantity"`
	UnitPrice      *int64  `json:"unitPrice"`
	DiscountAmount int64   `json:"discountAmount"`
	WarrantyMonths *int    `json:"warrantyMonths"`
}

// CheckoutRequest is a cart with its payment.
type CheckoutRequest struct {
	CustomerID           *int                 `json:"customerId"`
	Items                []CartItem           `json:"items" binding:"required,min=1"`
	DiscountAmount       int64                `json:"discountAmount"`
	PaidAmount           int64                `json:"paidAmount"`
	PaymentMethod        models.PaymentMethod `json:"paymentMethod"`
	AcknowledgeShortfall bool                 `json:"acknowledgeShortfall"`
	InstallmentMonths    int                  `json:"installmentMonths"`
	Notes                *string              `json:"notes"`
}

// Quote is a priced cart and the payment figures the till shows before confirming.
type Quote struct {
	rules.Invoice
	PaidAmount     int64 `json:"paidAmount"`
	Change         int64 `json:"change"`
	AmountOwed     int64 `json:"amountOwed"`
	MonthlyPayment int64 `json:"monthlyPayment,omitempty"`
}

// CheckoutResult is the saved sale with its change and any resulting debt.
type CheckoutResult struct {
	Sale       *models.Sale `json:"sale"`
	Change     int64        `json:"change"`
	AmountOwed int64        `json:"amountOwed"`
	Debt       *models.Debt `json:"debt,omitempty"`
}

// resolvedLine is a cart item with its product and unit loaded.
type resolvedLine struct {
	product *models.Product
	unit    *models.InventoryUnit
	line    rules.CartLine
	months  int
}

// resolve loads products and units and fills default prices, quantities and
// warranty months.
func (s *SaleService) resolve(ctx context.Context, st *repository.Store, items []CartItem) ([]resolvedLine, []rules.CartLine, error) {
	if len(items) == 0 {
		return nil, nil, rules.Invalid("items", "cart is empty")
	}
	lines := make([]resolvedLine, 0, len(items))
	cart := make([]rules.CartLine, 0, len(items))

	for i, it := range items {
		var (
			rl  resolvedLine
			err error
		)
		imei := rules.NormalizeIMEI(it.IMEI)
		switch {
		case it.UnitID != nil:
			rl.unit, err = st.Units.GetByID(ctx, *it.UnitID)
		case imei != nil:
			rl.unit, err = st.Units.GetByIMEI(ctx, *imei)
		}
		if err != nil {
			return nil, nil, err
		}

		productID := it.ProductID
		if rl.unit != nil {
			if productID != 0 && productID != rl.unit.ProductID {
				return nil, nil, rules.Invalid("items", "line %d unit %d belongs to product %d", i+1, rl.unit.ID, rl.unit.ProductID)
			}
			productID = rl.unit.ProductID
		}
		if productID == 0 {
			return nil, nil, rules.Invalid("items", "line %d needs a product, unit or IMEI", i+1)
		}
		if rl.product, err = st.Products.GetByID(ctx, productID); err != nil {
			return nil, nil, err
		}
		if !rl.product.IsActive {
			return nil, nil, rules.Invalid("items", "line %d product %q is inactive", i+1, rl.product.Name)
		}
		if rl.unit == nil && rl.product.TrackIMEI {
			return nil, nil, rules.Invalid("items", "line %d product %q tracks IMEI, select a unit", i+1, rl.product.Name)
		}

		rl.line = rules.CartLine{
			ProductID:      productID,
			Quantity:       it.Quantity,
			UnitPrice:      rl.product.SellingPrice,
			DiscountAmount: it.DiscountAmount,
		}
		if rl.unit != nil {
			rl.line.UnitID = &rl.unit.ID
			if rl.line.Quantity == 0 {
				rl.line.Quantity = 1
			}
			if rl.unit.SellingPrice > 0 {
				rl.line.UnitPrice = rl.unit.SellingPrice
			}
		}
		if it.UnitPrice != nil {
			rl.line.UnitPrice = *it.UnitPrice
		}
		rl.months = rl.product.WarrantyMonths
		if it.WarrantyMonths != nil {
			if *it.WarrantyMonths < 0 {
				return nil, nil, rules.Invalid("items", "line %d warranty months must be >= 0", i+1)
			}
			rl.months = *it.WarrantyMonths
		}

		lines = append(lines, rl)
		cart = append(cart, rl.line)
	}
	return lines, cart, nil
}

func (s *SaleService) installment(months int, owed int64) (int64, error) {
	if months == 0 {
		return 0, nil
	}
	if months < 0 {
		return 0, rules.Invalid("installment_months", "must be >= 0")
	}
	if owed == 0 {
		return 0, rules.Invalid("installment_months", "nothing is left to pay in installments")
	}
	return rules.MonthlyInstallment(owed, s.shop.InstallmentInterestRate, months)
}

// Quote prices a cart without writing anything.
func (s *SaleService) Quote(ctx context.Context, req *CheckoutRequest) (*Quote, error) {
	_, cart, err := s.resolve(ctx, s.store, req.Items)
	if err != nil {
		return nil, err
	}
	inv, err := rules.PriceCart(cart, req.DiscountAmount, s.shop.VATRate)
	if err != nil {
		return nil, err
	}
	if req.PaidAmount < 0 {
		return nil, rules.Invalid("paid_amount", "must be >= 0")
	}
	q := &Quote{
		Invoice:    inv,
		PaidAmount: req.PaidAmount,
		Change:     rules.Change(req.PaidAmount, inv.TotalAmount),
		AmountOwed: rules.AmountOwed(req.PaidAmount, inv.TotalAmount),
	}
	if q.MonthlyPayment, err = s.installment(req.InstallmentMonths, q.AmountOwed); err != nil {
		return nil, err
	}
	return q, nil
}

// Checkout saves a sale atomically: the sale and its lines, the units sold,
// one income entry for the money collected, a customer debt for any shortfall
// and a warranty per serialized unit. Any failure leaves nothing behind.
func (s *SaleService) Checkout(ctx context.Context, actor models.Actor, req *CheckoutRequest) (*CheckoutResult, error) {
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if method == models.MethodInstallment && req.InstallmentMonths <= 0 {
		return nil, rules.Invalid("installment_months", "is required for installment payments")
	}

	now := s.clock.Now()
	stamp := rules.StampOf(now)
	today := rules.DateOf(now)
	result := &CheckoutResult{}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		lines, cart, err := s.resolve(ctx, tx, req.Items)
		if err != nil {
			return err
		}
		inv, err := rules.PriceCart(cart, req.DiscountAmount, s.shop.VATRate)
		if err != nil {
			return err
		}
		acknowledged := req.AcknowledgeShortfall || req.InstallmentMonths > 0
		if err := rules.CheckPayment(req.PaidAmount, inv.TotalAmount, acknowledged, req.CustomerID); err != nil {
			return err
		}
		owed := rules.AmountOwed(req.PaidAmount, inv.TotalAmount)
		monthly, err := s.installment(req.InstallmentMonths, owed)
		if err != nil {
			return err
		}
		if req.CustomerID != nil {
			if _, err := tx.Customers.GetByID(ctx, *req.CustomerID); err != nil {
				return err
			}
		}

		number, err := rules.NextNumber(ctx, rules.PrefixInvoice, now, tx.Sales.InvoiceExists)
		if err != nil {
			return err
		}
		collected := inv.TotalAmount - owed
		sale := &models.Sale{
			InvoiceNumber:     number,
			CustomerID:        req.CustomerID,
			StaffID:           actor.StaffID,
			SaleDate:          stamp,
			Subtotal:          inv.Subtotal,
			DiscountAmount:    inv.DiscountAmount,
			TaxAmount:         inv.TaxAmount,
			TotalAmount:       inv.TotalAmount,
			PaidAmount:        collected,
			PaymentMethod:     method,
			PaymentStatus:     rules.PaymentStatusFor(collected, inv.TotalAmount),
			IsInstallment:     req.InstallmentMonths > 0,
			InstallmentMonths: req.InstallmentMonths,
			MonthlyPayment:    monthly,
			Notes:             req.Notes,
			CreatedAt:         stamp,
			UpdatedAt:         stamp,
		}
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return err
		}

		for _, rl := range lines {
			item, err := s.sellLine(ctx, tx, sale, rl, stamp)
			if err != nil {
				return err
			}
			sale.Items = append(sale.Items, *item)

			if rl.unit == nil || rl.months == 0 {
				continue
			}
			w := &models.Warranty{
				SaleID:         &sale.ID,
				ProductID:      &rl.product.ID,
				CustomerID:     req.CustomerID,
				IMEI:           rl.unit.IMEI,
				ProductName:    rl.product.Name,
				WarrantyType:   models.WarrantyTypeProduct,
				WarrantyMonths: rl.months,
				StartDate:      today,
			}
			if err := issueWarranty(ctx, tx, now, w); err != nil {
				return err
			}
			sale.Warranties = append(sale.Warranties, *w)
		}

		if err := appendLedger(ctx, tx, &models.Transaction{
			TransactionType: models.TrxIncome,
			Amount:          collected,
			Description:     "Sale " + number,
			ReferenceType:   models.RefSale,
			ReferenceID:     ref(sale.ID),
			PaymentMethod:   method,
			StaffID:         staffRef(actor),
			TransactionDate: stamp,
			CreatedAt:       stamp,
		}); err != nil {
			return err
		}

		if owed > 0 {
			debt := &models.Debt{
				DebtorType:    models.DebtorCustomer,
				DebtorID:      *req.CustomerID,
				Amount:        owed,
				Description:   "Unpaid balance of " + number,
				ReferenceType: models.RefSale,
				ReferenceID:   ref(sale.ID),
				DueDate:       rules.AddDays(today, s.shop.DebtDueDays),
			}
			if err := openDebt(ctx, tx, now, debt); err != nil {
				return err
			}
			result.Debt = debt
		}

		result.Sale = sale
		result.Change = rules.Change(req.PaidAmount, inv.TotalAmount)
		result.AmountOwed = owed
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("staff_id", actor.StaffID).Int("lines", len(req.Items)).Msg("Checkout rejected")
		return nil, err
	}

	sale := result.Sale
	log.Info().
		Str("invoice_number", sale.InvoiceNumber).
		Int64("total", sale.TotalAmount).
		Int64("paid", sale.PaidAmount).
		Int64("owed", result.AmountOwed).
		Int("warranties", len(sale.Warranties)).
		Int("staff_id", actor.StaffID).
		Msg("Sale completed")
	s.notifier.NotifySaleCreated(sale)
	return result, nil
}

// sellLine marks the line's units sold and stores the invoice line.
func (s *SaleService) sellLine(ctx context.Context, tx *repository.Store, sale *models.Sale, rl resolvedLine, at time.Time) (*models.SaleItem, error) {
	item := &models.SaleItem{
		SaleID:         sale.ID,
		ProductID:      rl.product.ID,
		Quantity:       rl.line.Quantity,
		UnitPrice:      rl.line.UnitPrice,
		DiscountAmount: rl.line.DiscountAmount,
		TotalPrice:     rl.line.LineTotal(),
		WarrantyMonths: rl.months,
		ProductName:    rl.product.Name,
	}

	if rl.unit != nil {
		from := rl.unit.Status
		if err := rules.TransitionUnit(rl.unit, models.UnitSold); err != nil {
			return nil, err
		}
		if err := tx.Units.UpdateStatus(ctx, rl.unit.ID, from, models.UnitSold, at); err != nil {
			return nil, err
		}
		item.UnitID = &rl.unit.ID
		item.IMEI = rl.unit.IMEI
	} else {
		units, err := tx.Units.OldestAvailable(ctx, rl.product.ID, rl.line.Quantity)
		if err != nil {
			return nil, err
		}
		if len(units) < rl.line.Quantity {
			return nil, &rules.IllegalTransitionError{
				Entity: fmt.Sprintf("product %q", rl.product.Name),
				From:   string(models.UnitAvailable),
				To:     string(models.UnitSold),
				Reason: fmt.Sprintf("%d requested, %d available", rl.line.Quantity, len(units)),
			}
		}
		for _, u := range units {
			if err := tx.Units.UpdateStatus(ctx, u.ID, models.UnitAvailable, models.UnitSold, at); err != nil {
				return nil, err
			}
		}
		item.WarrantyMonths = 0
	}

	if err := tx.Sales.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns a sale by invoice number with its lines and the warranties and debt it produced.
func (s *SaleService) Get(ctx context.Context, invoice string) (*models.Sale, error) {
	sale, err := s.store.Sales.GetByInvoice(ctx, strings.ToUpper(strings.TrimSpace(invoice)))
	if err != nil {
		return nil, err
	}
	if sale.Items, err = s.store.Sales.Items(ctx, sale.ID); err != nil {
		return nil, err
	}
	if sale.Warranties, err = s.store.Warranties.BySale(ctx, sale.ID); err != nil {
		return nil, err
	}
	if sale.Debts, err = s.store.Debts.ByReference(ctx, models.RefSale, sale.ID); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *SaleService) List(ctx context.Context, f models.SaleFilter) ([]models.Sale, int, error) {
	return s.store.Sales.GetAllPaged(ctx, f)
}
