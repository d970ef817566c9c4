package models

import "time"

// WarrantyStatus is the stored state of a warranty. WarrantyExpired is only
// ever derived from the end date and is never written.
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyClaimed WarrantyStatus = "claimed"
	WarrantyVoided  WarrantyStatus = "voided"
)

// WarrantyType tells what is covered.
type WarrantyType string

const (
	WarrantyTypeProduct WarrantyType = "product"
	WarrantyTypeRepair  WarrantyType = "repair"
)

// Warranty is a coverage record. StartDate and EndDate are civil dates.
type Warranty struct {
	ID             int            `db:"id" json:"id"`
	WarrantyNumber string         `db:"warranty_number" json:"warrantyNumber"`
	LookupToken    string         `db:"lookup_token" json:"lookupToken"`
	SaleID         *int           `db:"sale_id" json:"saleId,omitempty"`
	RepairID       *int           `db:"repair_id" json:"repairId,omitempty"`
	ProductID      *int           `db:"product_id" json:"productId,omitempty"`
	CustomerID     *int           `db:"customer_id" json:"customerId,omitempty"`
	IMEI           *string        `db:"imei" json:"imei,omitempty"`
	ProductName    string         `db:"product_name" json:"productName"`
	WarrantyType   WarrantyType   `db:"warranty_type" json:"warrantyType"`
	WarrantyMonths int            `db:"warranty_months" json:"warrantyMonths"`
	StartDate      time.Time      `db:"start_date" json:"startDate"`
	EndDate        time.Time      `db:"end_date" json:"endDate"`
	Status         WarrantyStatus `db:"status" json:"status"`
	ClaimNotes     *string        `db:"claim_notes" json:"claimNotes,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`

	CustomerName *string `db:"customer_name" json:"customerName,omitempty"`
}

// WarrantyView is a warranty with its coverage computed for a given day.
type WarrantyView struct {
	Warranty
	EffectiveStatus WarrantyStatus `json:"effectiveStatus"`
	RemainingDays   int            `json:"remainingDays"`
}

// WarrantyFilter narrows warranty listings. Status is matched against the
// effective status.
type WarrantyFilter struct {
	Status WarrantyStatus
	Type   WarrantyType
	Search string
	Page   int
	Limit  int
}
