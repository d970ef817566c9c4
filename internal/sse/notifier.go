package sse

import (
	"time"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// Alert summarises the conditions the shop should act on.
type Alert struct {
	OverduePawns       int `json:"overduePawns"`
	ExpiringWarranties int `json:"expiringWarranties"`
	LowStockProducts   int `json:"lowStockProducts"`
}

// Empty reports whether nothing needs attention.
func (a Alert) Empty() bool {
	return a.OverduePawns == 0 && a.ExpiringWarranties == 0 && a.LowStockProducts == 0
}

// Notifier is the interface services use to emit domain events. Calls happen
// after the unit of work has committed.
type Notifier interface {
	NotifySaleCreated(sale *models.Sale)
	NotifyPawnChanged(c *models.PawnContract)
	NotifyRepairChanged(r *models.Repair)
	NotifyAlert(a Alert)
}

// HubNotifier implements Notifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) broadcast(e *Event) {
	if n.hub.ClientCount() == 0 {
		return
	}
	e.Timestamp = n.now()
	n.hub.Broadcast(e)
}

func (n *HubNotifier) NotifySaleCreated(sale *models.Sale) {
	total := sale.TotalAmount
	n.broadcast(&Event{
		Event:  EventSaleCreated,
		Number: sale.InvoiceNumber,
		Status: string(sale.PaymentStatus),
		Amount: &total,
	})
}

func (n *HubNotifier) NotifyPawnChanged(c *models.PawnContract) {
	loan := c.LoanAmount
	n.broadcast(&Event{
		Event:  EventPawnChanged,
		Number: c.ContractNumber,
		Status: string(c.Status),
		Amount: &loan,
	})
}

func (n *HubNotifier) NotifyRepairChanged(r *models.Repair) {
	n.broadcast(&Event{
		Event:  EventRepairChanged,
		Number: r.RepairNumber,
		Status: string(r.Status),
	})
}

func (n *HubNotifier) NotifyAlert(a Alert) {
	n.broadcast(&Event{Event: EventAlert, Data: a})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifySaleCreated(*models.Sale)         {}
func (NopNotifier) NotifyPawnChanged(*models.PawnContract) {}
func (NopNotifier) NotifyRepairChanged(*models.Repair)     {}
func (NopNotifier) NotifyAlert(Alert)                      {}
