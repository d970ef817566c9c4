package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// SupplierRepository handles data access for suppliers.
type SupplierRepository struct {
	db sqlx.ExtContext
}

const supplierColumns = `id, name, contact_person, phone, email, address, tax_code, is_active, created_at, updated_at`

func (r *SupplierRepository) GetByID(ctx context.Context, id int) (*models.Supplier, error) {
	var s models.Supplier
	if err := getOne(ctx, r.db, &s, "supplier", fmt.Sprintf("#%d", id),
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) List(ctx context.Context, search string) ([]models.Supplier, error) {
	var w filter
	w.search(search, "name", "COALESCE(phone, '')", "COALESCE(contact_person, '')")
	suppliers := []models.Supplier{}
	err := selectAll(ctx, r.db, &suppliers, "list suppliers",
		`SELECT `+supplierColumns+` FROM suppliers`+w.where()+` ORDER BY name`, w.args...)
	return suppliers, err
}

func (r *SupplierRepository) Create(ctx context.Context, s *models.Supplier) error {
	id, err := insert(ctx, r.db, "insert supplier", `
		INSERT INTO suppliers (name, contact_person, phone, email, address, tax_code, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address, s.TaxCode, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *models.Supplier) error {
	return execOne(ctx, r.db, "supplier", s.ID, `
		UPDATE suppliers
		SET name = ?, contact_person = ?, phone = ?, email = ?, address = ?, tax_code = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.ContactPerson, s.Phone, s.Email, s.Address, s.TaxCode, s.IsActive, s.UpdatedAt, s.ID)
}
