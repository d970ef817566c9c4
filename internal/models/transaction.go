package models

import "time"

// TransactionType is the direction of a cash ledger entry.
type TransactionType string

const (
	TrxIncome  TransactionType = "income"
	TrxExpense TransactionType = "expense"
)

// ReferenceType names what produced a ledger entry or debt.
type ReferenceType string

const (
	RefSale         ReferenceType = "sale"
	RefRepair       ReferenceType = "repair"
	RefPawnLoan     ReferenceType = "pawn_loan"
	RefPawnInterest ReferenceType = "pawn_interest"
	RefPawnRedeem   ReferenceType = "pawn_redeem"
	RefDebt         ReferenceType = "debt"
	RefStock        ReferenceType = "stock"
	RefManual       ReferenceType = "manual"
)

// Transaction is an append-only cash ledger entry.
type Transaction struct {
	ID              int             `db:"id" json:"id"`
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	Amount          int64           `db:"amount" json:"amount"`
	Description     string          `db:"description" json:"description"`
	ReferenceType   ReferenceType   `db:"reference_type" json:"referenceType"`
	ReferenceID     *int            `db:"reference_id" json:"referenceId,omitempty"`
	PaymentMethod   PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	StaffID         *int            `db:"staff_id" json:"staffId,omitempty"`
	TransactionDate time.Time       `db:"transaction_date" json:"transactionDate"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	Type          TransactionType
	ReferenceType ReferenceType
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// LedgerTotals aggregates ledger rows over a period.
type LedgerTotals struct {
	Income  int64 `db:"income" json:"income"`
	Expense int64 `db:"expense" json:"expense"`
	Profit  int64 `db:"-" json:"profit"`
}

// LedgerBreakdown is one row of a per-reference summary.
type LedgerBreakdown struct {
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	ReferenceType   ReferenceType   `db:"reference_type" json:"referenceType"`
	Count           int             `db:"count" json:"count"`
	Total           int64           `db:"total" json:"total"`
}
