package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// RepairRepository handles data access for repair tickets.
type RepairRepository struct {
	db sqlx.ExtContext
}

const repairColumns = `
	r.id, r.repair_number, r.lookup_token, r.customer_id, r.staff_id, r.technician_id,
	r.device_brand, r.device_model, r.imei, r.problem_description, r.diagnosis, r.repair_status,
	r.labor_cost, r.parts_cost, r.total_cost, r.paid_amount, r.received_date, r.estimated_completion,
	r.actual_completion, r.delivered_at, r.warranty_months, r.lock_info, r.notes, r.created_at, r.updated_at,
	c.name AS customer_name`

const repairFrom = ` FROM repairs r JOIN customers c ON c.id = r.customer_id`

// NumberExists reports whether a repair number is taken.
func (r *RepairRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	return exists(ctx, r.db, "check repair number", `SELECT COUNT(1) FROM repairs WHERE repair_number = ?`, number)
}

func (r *RepairRepository) GetByID(ctx context.Context, id int) (*models.Repair, error) {
	var rep models.Repair
	if err := getOne(ctx, r.db, &rep, "repair", fmt.Sprintf("#%d", id),
		`SELECT`+repairColumns+repairFrom+` WHERE r.id = ?`, id); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *RepairRepository) GetByNumber(ctx context.Context, number string) (*models.Repair, error) {
	var rep models.Repair
	if err := getOne(ctx, r.db, &rep, "repair", number,
		`SELECT`+repairColumns+repairFrom+` WHERE r.repair_number = ?`, number); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *RepairRepository) GetAllPaged(ctx context.Context, f models.RepairFilter) ([]models.Repair, int, error) {
	var w filter
	if f.Status != "" {
		w.add("r.repair_status = ?", f.Status)
	}
	w.search(f.Search, "r.repair_number", "COALESCE(r.imei, '')", "r.device_model", "c.name", "COALESCE(c.phone, '')")

	total, err := count(ctx, r.db, "count repairs", `SELECT COUNT(1)`+repairFrom+w.where(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := page(f.Page, f.Limit)
	list := []models.Repair{}
	args := append(append([]any{}, w.args...), limit, offset)
	if err := selectAll(ctx, r.db, &list, "list repairs",
		`SELECT`+repairColumns+repairFrom+w.where()+` ORDER BY r.received_date DESC, r.id DESC LIMIT ? OFFSET ?`, args...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *RepairRepository) Create(ctx context.Context, rep *models.Repair) error {
	id, err := insert(ctx, r.db, "insert repair", `
		INSERT INTO repairs (repair_number, lookup_token, customer_id, staff_id, technician_id,
			device_brand, device_model, imei, problem_description, diagnosis, repair_status,
			labor_cost, parts_cost, total_cost, paid_amount, received_date, estimated_completion,
			warranty_months, lock_info, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RepairNumber, rep.LookupToken, rep.CustomerID, rep.StaffID, rep.TechnicianID,
		rep.DeviceBrand, rep.DeviceModel, rep.IMEI, rep.ProblemDescription, rep.Diagnosis, rep.Status,
		rep.LaborCost, rep.PartsCost, rep.TotalCost, rep.PaidAmount, rep.ReceivedDate, rep.EstimatedCompletion,
		rep.WarrantyMonths, rep.LockInfo, rep.Notes, rep.CreatedAt, rep.UpdatedAt)
	if err != nil {
		return err
	}
	rep.ID = id
	return nil
}

// Update saves the mutable fields of a ticket.
func (r *RepairRepository) Update(ctx context.Context, rep *models.Repair) error {
	return execOne(ctx, r.db, "repair", rep.ID, `
		UPDATE repairs
		SET technician_id = ?, diagnosis = ?, repair_status = ?, labor_cost = ?, parts_cost = ?, total_cost = ?,
			paid_amount = ?, estimated_completion = ?, actual_completion = ?, delivered_at = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		rep.TechnicianID, rep.Diagnosis, rep.Status, rep.LaborCost, rep.PartsCost, rep.TotalCost,
		rep.PaidAmount, rep.EstimatedCompletion, rep.ActualCompletion, rep.DeliveredAt, rep.Notes, rep.UpdatedAt, rep.ID)
}

// StatusCount is the number of tickets per status.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

func (r *RepairRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	counts := []StatusCount{}
	err := selectAll(ctx, r.db, &counts, "count repairs by status",
		`SELECT repair_status AS status, COUNT(1) AS count FROM repairs GROUP BY repair_status ORDER BY repair_status`)
	return counts, err
}
