package models

import "time"

// Role is the access level of a staff account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleCashier Role = "cashier"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleCashier:
		return true
	}
	return false
}

// Staff represents an employee account for the back office.
type Staff struct {
	ID             int        `db:"id" json:"id"`
	Username       string     `db:"username" json:"username"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       string     `db:"full_name" json:"fullName"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Role           Role       `db:"role" json:"role"`
	CommissionRate float64    `db:"commission_rate" json:"commissionRate"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Actor identifies the authenticated staff member performing an operation.
type Actor struct {
	StaffID int
	Role    Role
}
