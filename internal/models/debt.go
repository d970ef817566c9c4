package models

import "time"

// DebtorType says who owes whom.
type DebtorType string

const (
	DebtorCustomer DebtorType = "customer"
	DebtorSupplier DebtorType = "supplier"
)

// DebtStatus is outstanding until the full amount is collected.
type DebtStatus string

const (
	DebtOutstanding DebtStatus = "outstanding"
	DebtSettled     DebtStatus = "settled"
)

// Debt is a balance owed by a customer or owed to a supplier.
type Debt struct {
	ID            int           `db:"id" json:"id"`
	DebtorType    DebtorType    `db:"debtor_type" json:"debtorType"`
	DebtorID      int           `db:"debtor_id" json:"debtorId"`
	Amount        int64         `db:"amount" json:"amount"`
	PaidAmount    int64         `db:"paid_amount" json:"paidAmount"`
	Description   string        `db:"description" json:"description"`
	ReferenceType ReferenceType `db:"reference_type" json:"referenceType"`
	ReferenceID   *int          `db:"reference_id" json:"referenceId,omitempty"`
	DueDate       time.Time     `db:"due_date" json:"dueDate"`
	Status        DebtStatus    `db:"status" json:"status"`
	SettledAt     *time.Time    `db:"settled_at" json:"settledAt,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`

	DebtorName string `db:"debtor_name" json:"debtorName,omitempty"`
}

// Outstanding is the amount still owed.
func (d *Debt) Outstanding() int64 {
	return d.Amount - d.PaidAmount
}

// DebtFilter narrows debt listings.
type DebtFilter struct {
	DebtorType DebtorType
	DebtorID   int
	Status     DebtStatus
	Page       int
	Limit      int
}

// CustomerDebt summarises what one customer owes.
type CustomerDebt struct {
	CustomerID  int     `db:"customer_id" json:"customerId"`
	Name        string  `db:"name" json:"name"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	DebtCount   int     `db:"debt_count" json:"debtCount"`
	Outstanding int64   `db:"outstanding" json:"outstanding"`
}
