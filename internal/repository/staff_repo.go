package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// StaffRepository handles data access for staff accounts.
type StaffRepository struct {
	db sqlx.ExtContext
}

const staffColumns = `id, username, password_hash, full_name, phone, email, role, commission_rate,
	is_active, last_login_at, created_at, updated_at`

func (r *StaffRepository) GetByID(ctx context.Context, id int) (*models.Staff, error) {
	var s models.Staff
	if err := getOne(ctx, r.db, &s, "staff", fmt.Sprintf("#%d", id),
		`SELECT `+staffColumns+` FROM staff WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	var s models.Staff
	if err := getOne(ctx, r.db, &s, "staff", username,
		`SELECT `+staffColumns+` FROM staff WHERE username = ?`, username); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) List(ctx context.Context) ([]models.Staff, error) {
	staff := []models.Staff{}
	err := selectAll(ctx, r.db, &staff, "list staff", `SELECT `+staffColumns+` FROM staff ORDER BY username`)
	return staff, err
}

func (r *StaffRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "count staff", `SELECT COUNT(1) FROM staff`)
}

func (r *StaffRepository) Create(ctx context.Context, s *models.Staff) error {
	id, err := insert(ctx, r.db, "insert staff", `
		INSERT INTO staff (username, password_hash, full_name, phone, email, role, commission_rate, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Username, s.PasswordHash, s.FullName, s.Phone, s.Email, s.Role, s.CommissionRate, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Update saves profile fields, role and active flag. The password has its own method.
func (r *StaffRepository) Update(ctx context.Context, s *models.Staff) error {
	return execOne(ctx, r.db, "staff", s.ID, `
		UPDATE staff
		SET full_name = ?, phone = ?, email = ?, role = ?, commission_rate = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		s.FullName, s.Phone, s.Email, s.Role, s.CommissionRate, s.IsActive, s.UpdatedAt, s.ID)
}

func (r *StaffRepository) UpdatePassword(ctx context.Context, id int, hash string, at time.Time) error {
	return execOne(ctx, r.db, "staff", id,
		`UPDATE staff SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, at, id)
}

func (r *StaffRepository) TouchLogin(ctx context.Context, id int, at time.Time) error {
	return execOne(ctx, r.db, "staff", id, `UPDATE staff SET last_login_at = ? WHERE id = ?`, at, id)
}
