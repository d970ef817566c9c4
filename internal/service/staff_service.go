package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

const minPasswordLength = 8

// StaffService manages back office accounts.
type StaffService struct {
	store *repository.Store
	clock rules.Clock
}

// NewStaffService constructs a StaffService.
func NewStaffService(store *repository.Store, clock rules.Clock) *StaffService {
	return &StaffService{store: store, clock: clock}
}

// CreateStaffRequest registers a new account.
type CreateStaffRequest struct {
	Username       string      `json:"username" binding:"required"`
	Password       string      `json:"password" binding:"required"`
	FullName       string      `json:"fullName" binding:"required"`
	Phone          *string     `json:"phone"`
	Email          *string     `json:"email"`
	Role           models.Role `json:"role" binding:"required"`
	CommissionRate float64     `json:"commissionRate"`
}

// UpdateStaffRequest changes profile fields. Nil fields are left as they are.
type UpdateStaffRequest struct {
	FullName       *string      `json:"fullName"`
	Phone          *string      `json:"phone"`
	Email          *string      `json:"email"`
	Role           *models.Role `json:"role"`
	CommissionRate *float64     `json:"commissionRate"`
	IsActive       *bool        `json:"isActive"`
}

// ChangePasswordRequest is a self-service password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", rules.Invalid("password", "must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func validateStaff(s *models.Staff) error {
	switch {
	case s.FullName == "":
		return rules.Invalid("full_name", "is required")
	case !s.Role.Valid():
		return rules.Invalid("role", "unknown role %q", s.Role)
	case s.CommissionRate < 0 || s.CommissionRate >= 1:
		return rules.Invalid("commission_rate", "must be in [0, 1)")
	}
	return nil
}

func (s *StaffService) Create(ctx context.Context, req *CreateStaffRequest) (*models.Staff, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, rules.Invalid("username", "is required")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := rules.StampOf(s.clock.Now())
	staff := &models.Staff{
		Username:       username,
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(req.FullName),
		Phone:          req.Phone,
		Email:          req.Email,
		Role:           req.Role,
		CommissionRate: req.CommissionRate,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validateStaff(staff); err != nil {
		return nil, err
	}
	if err := s.store.Staff.Create(ctx, staff); err != nil {
		return nil, err
	}
	log.Info().Int("staff_id", staff.ID).Str("username", username).Str("role", string(staff.Role)).Msg("Staff created")
	return staff, nil
}

func (s *StaffService) Update(ctx context.Context, id int, req *UpdateStaffRequest) (*models.Staff, error) {
	staff, err := s.store.Staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		staff.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		staff.Phone = req.Phone
	}
	if req.Email != nil {
		staff.Email = req.Email
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.CommissionRate != nil {
		staff.CommissionRate = *req.CommissionRate
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}
	if err := validateStaff(staff); err != nil {
		return nil, err
	}
	staff.UpdatedAt = rules.StampOf(s.clock.Now())
	if err := s.store.Staff.Update(ctx, staff); err != nil {
		return nil, err
	}
	log.Info().Int("staff_id", staff.ID).Bool("is_active", staff.IsActive).Msg("Staff updated")
	return staff, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *StaffService) ChangePassword(ctx context.Context, actor models.Actor, req *ChangePasswordRequest) error {
	staff, err := s.store.Staff.GetByID(ctx, actor.StaffID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return utils.ErrInvalidCredentials
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.Staff.UpdatePassword(ctx, staff.ID, hash, rules.StampOf(s.clock.Now())); err != nil {
		return err
	}
	log.Info().Int("staff_id", staff.ID).Msg("Password changed")
	return nil
}

func (s *StaffService) Get(ctx context.Context, id int) (*models.Staff, error) {
	return s.store.Staff.GetByID(ctx, id)
}

func (s *StaffService) List(ctx context.Context) ([]models.Staff, error) {
	return s.store.Staff.List(ctx)
}

// EnsureAdmin creates the bootstrap administrator when no staff exist yet.
// It is a no-op once any account has been created.
func (s *StaffService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	n, err := s.store.Staff.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if cfg.Password == "" {
		log.Warn().Msg("No staff accounts and ADMIN_PASSWORD is empty; skipping admin bootstrap")
		return nil
	}
	staff, err := s.Create(ctx, &CreateStaffRequest{
		Username: cfg.Username,
		Password: cfg.Password,
		FullName: cfg.FullName,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.Info().Int("staff_id", staff.ID).Str("username", staff.Username).Msg("Bootstrap admin created")
	return nil
}
