package models

import "time"

// UnitStatus is the lifecycle state of a physical stock unit.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitSold      UnitStatus = "sold"
	UnitReserved  UnitStatus = "reserved"
	UnitRepair    UnitStatus = "repair"
	UnitDamaged   UnitStatus = "damaged"
)

// Valid reports whether s is a known unit status.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitAvailable, UnitSold, UnitReserved, UnitRepair, UnitDamaged:
		return true
	}
	return false
}

// UnitCondition grades the physical state of a unit.
type UnitCondition string

const (
	ConditionNew     UnitCondition = "new"
	ConditionLikeNew UnitCondition = "like_new"
	ConditionGood    UnitCondition = "good"
	ConditionFair    UnitCondition = "fair"
	ConditionPoor    UnitCondition = "poor"
)

// Valid reports whether c is a known condition.
func (c UnitCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// InventoryUnit is one physical item in stock. Units are never deleted; their
// status carries the lifecycle.
type InventoryUnit struct {
	ID           int           `db:"id" json:"id"`
	ProductID    int           `db:"product_id" json:"productId"`
	SupplierID   *int          `db:"supplier_id" json:"supplierId,omitempty"`
	IMEI         *string       `db:"imei" json:"imei,omitempty"`
	SerialNumber *string       `db:"serial_number" json:"serialNumber,omitempty"`
	Condition    UnitCondition `db:"condition" json:"condition"`
	Status       UnitStatus    `db:"status" json:"status"`
	CostPrice    int64         `db:"cost_price" json:"costPrice"`
	SellingPrice int64         `db:"selling_price" json:"sellingPrice"`
	Location     *string       `db:"location" json:"location,omitempty"`
	PurchaseDate time.Time     `db:"purchase_date" json:"purchaseDate"`
	Notes        *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`

	// Joined from products
	ProductName string `db:"product_name" json:"productName,omitempty"`
}

// UnitFilter narrows inventory listings.
type UnitFilter struct {
	ProductID int
	Status    UnitStatus
	Search    string
	Page      int
	Limit     int
}
