package rules

import (
	"github.com/GTDGit/gtd_pos/internal/models"
)

// CartLine is one line of a cart before checkout.
type CartLine struct {
	ProductID      int
	UnitID         *int
	Quantity       int
	UnitPrice      int64
	DiscountAmount int64
}

// LineTotal is unit_price × quantity − line discount.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice*int64(l.Quantity) - l.DiscountAmount
}

// Invoice holds the priced amounts of a cart.
type Invoice struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discountAmount"`
	TaxAmount      int64 `json:"taxAmount"`
	TotalAmount    int64 `json:"totalAmount"`
}

// PriceCart computes subtotal = Σ unit_price × quantity,
// tax = round((subtotal − discount) × vatRate) and total = subtotal − discount + tax.
// Tax is applied after the discount.
func PriceCart(lines []CartLine, discount int64, vatRate float64) (Invoice, error) {
	if len(lines) == 0 {
		return Invoice{}, Invalid("items", "cart is empty")
	}
	if vatRate < 0 || vatRate >= 1 {
		return Invoice{}, Invalid("vat_rate", "must be in [0, 1)")
	}

	seenUnits := make(map[int]bool)
	var subtotal int64
	for i, l := range lines {
		if l.Quantity < 1 {
			return Invoice{}, Invalid("items", "line %d quantity must be >= 1", i+1)
		}
		if l.UnitPrice < 0 {
			return Invoice{}, Invalid("items", "line %d unit price must be >= 0", i+1)
		}
		if l.DiscountAmount < 0 || l.DiscountAmount > l.UnitPrice*int64(l.Quantity) {
			return Invoice{}, Invalid("items", "line %d discount must be between 0 and the line amount", i+1)
		}
		if l.UnitID != nil {
			if l.Quantity != 1 {
				return Invoice{}, Invalid("items", "line %d sells a serialized unit and must have quantity 1", i+1)
			}
			if seenUnits[*l.UnitID] {
				return Invoice{}, Invalid("items", "unit %d appears more than once", *l.UnitID)
			}
			seenUnits[*l.UnitID] = true
		}
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	if discount < 0 || discount > subtotal {
		return Invoice{}, Invalid("discount_amount", "must be between 0 and subtotal %d", subtotal)
	}

	tax := ApplyRate(subtotal-discount, vatRate)
	return Invoice{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		TotalAmount:    subtotal - discount + tax,
	}, nil
}

// PaymentStatusFor is paid when the payment covers the total, partial otherwise.
// pending is never produced for a saved sale.
func PaymentStatusFor(paid, total int64) models.PaymentStatus {
	if paid >= total {
		return models.PaymentPaid
	}
	return models.PaymentPartial
}

// Change is paid − total. A negative value is the shortfall.
func Change(paid, total int64) int64 {
	return paid - total
}

// AmountOwed is what the customer still owes after paying.
func AmountOwed(paid, total int64) int64 {
	if paid >= total {
		return 0
	}
	return total - paid
}

// CheckPayment gates a checkout. A shortfall is only accepted when the caller
// acknowledged it, and it needs a customer to carry the resulting debt.
func CheckPayment(paid, total int64, acknowledged bool, customerID *int) error {
	if paid < 0 {
		return Invalid("paid_amount", "must be >= 0")
	}
	owed := AmountOwed(paid, total)
	if owed == 0 {
		return nil
	}
	if !acknowledged {
		return &InsufficientPaymentError{Required: total, Paid: paid}
	}
	if customerID == nil {
		return Invalid("customer_id", "a customer is required to record a debt of %d", owed)
	}
	return nil
}
