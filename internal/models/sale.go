package models

import "time"

// PaymentStatus tracks how much of a sale has been collected.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentMethod is how money changed hands.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "cash"
	MethodCard        PaymentMethod = "card"
	MethodTransfer    PaymentMethod = "transfer"
	MethodEWallet     PaymentMethod = "ewallet"
	MethodInstallment PaymentMethod = "installment"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodEWallet, MethodInstallment:
		return true
	}
	return false
}

// Sale is one checkout. It is immutable after creation except for the paid
// amount and payment status, which change when the resulting debt is collected.
type Sale struct {
	ID                int           `db:"id" json:"id"`
	InvoiceNumber     string        `db:"invoice_number" json:"invoiceNumber"`
	CustomerID        *int          `db:"customer_id" json:"customerId,omitempty"`
	StaffID           int           `db:"staff_id" json:"staffId"`
	SaleDate          time.Time     `db:"sale_date" json:"saleDate"`
	Subtotal          int64         `db:"subtotal" json:"subtotal"`
	DiscountAmount    int64         `db:"discount_amount" json:"discountAmount"`
	TaxAmount         int64         `db:"tax_amount" json:"taxAmount"`
	TotalAmount       int64         `db:"total_amount" json:"totalAmount"`
	PaidAmount        int64         `db:"paid_amount" json:"paidAmount"`
	PaymentMethod     PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"paymentStatus"`
	IsInstallment     bool          `db:"is_installment" json:"isInstallment"`
	InstallmentMonths int           `db:"installment_months" json:"installmentMonths,omitempty"`
	MonthlyPayment    int64         `db:"monthly_payment" json:"monthlyPayment,omitempty"`
	Notes             *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`

	// Joined
	CustomerName *string `db:"customer_name" json:"customerName,omitempty"`
	StaffName    string  `db:"staff_name" json:"staffName,omitempty"`

	Items      []SaleItem `db:"-" json:"items,omitempty"`
	Warranties []Warranty `db:"-" json:"warranties,omitempty"`
	Debts      []Debt     `db:"-" json:"debts,omitempty"`
}

// SaleItem is one invoice line. A line references a serialized unit or just a product.
type SaleItem struct {
	ID             int     `db:"id" json:"id"`
	SaleID         int     `db:"sale_id" json:"saleId"`
	ProductID      int     `db:"product_id" json:"productId"`
	UnitID         *int    `db:"unit_id" json:"unitId,omitempty"`
	IMEI           *string `db:"imei" json:"imei,omitempty"`
	Quantity       int     `db:"quantity" json:"quantity"`
	UnitPrice      int64   `db:"unit_price" json:"unitPrice"`
	DiscountAmount int64   `db:"discount_amount" json:"discountAmount"`
	TotalPrice     int64   `db:"total_price" json:"totalPrice"`
	WarrantyMonths int     `db:"warranty_months" json:"warrantyMonths"`

	ProductName string `db:"product_name" json:"productName,omitempty"`
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentStatus PaymentStatus
	CustomerID    int
	Search        string
	Page          int
	Limit         int
}
