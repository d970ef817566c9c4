package models

import "time"

// RepairStatus is the workflow state of a repair ticket.
type RepairStatus string

const (
	RepairReceived         RepairStatus = "received"
	RepairDiagnosing       RepairStatus = "diagnosing"
	RepairRepairing        RepairStatus = "repairing"
	RepairWaitingParts     RepairStatus = "waiting_parts"
	RepairCompleted        RepairStatus = "completed"
	RepairCustomerNotified RepairStatus = "customer_notified"
	RepairDelivered        RepairStatus = "delivered"
	RepairCancelled        RepairStatus = "cancelled"
)

// Repair is a service ticket.
type Repair struct {
	ID                  int          `db:"id" json:"id"`
	RepairNumber        string       `db:"repair_number" json:"repairNumber"`
	LookupToken         string       `db:"lookup_token" json:"lookupToken"`
	CustomerID          int          `db:"customer_id" json:"customerId"`
	StaffID             int          `db:"staff_id" json:"staffId"`
	TechnicianID        *int         `db:"technician_id" json:"technicianId,omitempty"`
	DeviceBrand         string       `db:"device_brand" json:"deviceBrand"`
	DeviceModel         string       `db:"device_model" json:"deviceModel"`
	IMEI                *string      `db:"imei" json:"imei,omitempty"`
	ProblemDescription  string       `db:"problem_description" json:"problemDescription"`
	Diagnosis           *string      `db:"diagnosis" json:"diagnosis,omitempty"`
	Status              RepairStatus `db:"repair_status" json:"status"`
	LaborCost           int64        `db:"labor_cost" json:"laborCost"`
	PartsCost           int64        `db:"parts_cost" json:"partsCost"`
	TotalCost           int64        `db:"total_cost" json:"totalCost"`
	PaidAmount          int64        `db:"paid_amount" json:"paidAmount"`
	ReceivedDate        time.Time    `db:"received_date" json:"receivedDate"`
	EstimatedCompletion time.Time    `db:"estimated_completion" json:"estimatedCompletion"`
	ActualCompletion    *time.Time   `db:"actual_completion" json:"actualCompletion,omitempty"`
	DeliveredAt         *time.Time   `db:"delivered_at" json:"deliveredAt,omitempty"`
	WarrantyMonths      int          `db:"warranty_months" json:"warrantyMonths"`
	LockInfo            *string      `db:"lock_info" json:"lockInfo,omitempty"`
	Notes               *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updatedAt"`

	CustomerName string `db:"customer_name" json:"customerName,omitempty"`
}

// RepairFilter narrows repair listings.
type RepairFilter struct {
	Status RepairStatus
	Search string
	Page   int
	Limit  int
}
