package models

import "time"

// PawnStatus is the stored state of a pawn contract. PawnOverdue is derived
// from the due date and is never written.
type PawnStatus string

const (
	PawnActive     PawnStatus = "active"
	PawnOverdue    PawnStatus = "overdue"
	PawnRedeemed   PawnStatus = "redeemed"
	PawnLiquidated PawnStatus = "liquidated"
	PawnExtended   PawnStatus = "extended"
)

// PawnContract is a loan secured by a customer's item.
type PawnContract struct {
	ID              int        `db:"id" json:"id"`
	ContractNumber  string     `db:"contract_number" json:"contractNumber"`
	CustomerID      int        `db:"customer_id" json:"customerId"`
	StaffID         int        `db:"staff_id" json:"staffId"`
	ItemDescription string     `db:"item_description" json:"itemDescription"`
	IMEI            *string    `db:"imei" json:"imei,omitempty"`
	ItemValue       int64      `db:"item_value" json:"itemValue"`
	LoanAmount      int64      `db:"loan_amount" json:"loanAmount"`
	InterestRate    float64    `db:"interest_rate" json:"interestRate"`
	ContractDate    time.Time  `db:"contract_date" json:"contractDate"`
	DueDate         time.Time  `db:"due_date" json:"dueDate"`
	Status          PawnStatus `db:"status" json:"status"`
	PaymentsMade    int64      `db:"payments_made" json:"paymentsMade"`
	TotalInterest   int64      `db:"total_interest" json:"totalInterest"`
	InterestCredit  int64      `db:"interest_credit" json:"interestCredit"`
	RenewalCount    int        `db:"renewal_count" json:"renewalCount"`
	ClosedAt        *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`

	CustomerName string `db:"customer_name" json:"customerName,omitempty"`
}

// PawnView is a contract with its interest computed for a given day.
type PawnView struct {
	PawnContract
	EffectiveStatus PawnStatus `json:"effectiveStatus"`
	OverdueDays     int        `json:"overdueDays"`
	MonthlyInterest int64      `json:"monthlyInterest"`
	CurrentInterest int64      `json:"currentInterest"`
	TotalDue        int64      `json:"totalDue"`
}

// PawnPaymentType classifies a payment against a contract.
type PawnPaymentType string

const (
	PawnPaymentInterest   PawnPaymentType = "interest"
	PawnPaymentExtension  PawnPaymentType = "extension"
	PawnPaymentRedemption PawnPaymentType = "full_redemption"
)

// PawnPayment is one collection against a contract.
type PawnPayment struct {
	ID              int             `db:"id" json:"id"`
	ContractID      int             `db:"contract_id" json:"contractId"`
	PaymentType     PawnPaymentType `db:"payment_type" json:"paymentType"`
	Amount          int64           `db:"amount" json:"amount"`
	InterestAmount  int64           `db:"interest_amount" json:"interestAmount"`
	PrincipalAmount int64           `db:"principal_amount" json:"principalAmount"`
	PaymentDate     time.Time       `db:"payment_date" json:"paymentDate"`
	StaffID         int             `db:"staff_id" json:"staffId"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
}

// PawnFilter narrows pawn listings. Status is matched against the effective status.
type PawnFilter struct {
	Status PawnStatus
	Search string
	Page   int
	Limit  int
}
