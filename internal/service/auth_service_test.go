package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

const testSecret = "test-secret"

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t, time.Now())
	auth := NewAuthService(f.store, f.clock, testSecret, time.Hour)

	res, err := auth.Login(f.ctx, &LoginRequest{Username: " Cashier ", Password: "cashier-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotNil(t, res.Staff.LastLoginAt)

	actor, err := auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.actor, actor)

	_, err = auth.Login(f.ctx, &LoginRequest{Username: "cashier", Password: "wrong-pass"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	_, err = auth.Login(f.ctx, &LoginRequest{Username: "nobody", Password: "cashier-pass"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = f.staffSvc().Update(f.ctx, f.actor.StaffID, &UpdateStaffRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = auth.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
	_, err = auth.Login(f.ctx, &LoginRequest{Username: "cashier", Password: "cashier-pass"})
	assert.ErrorIs(t, err, utils.ErrAccountInactive)
}

func TestAuthenticate_ExpiryFollowsServiceClock(t *testing.T) {
	issued := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)
	f := newFixture(t, issued)
	auth := NewAuthService(f.store, f.clock, testSecret, time.Hour)

	res, err := auth.Login(f.ctx, &LoginRequest{Username: "cashier", Password: "cashier-pass"})
	require.NoError(t, err)
	actor, err := auth.Authenticate(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, f.actor, actor)

	later := NewAuthService(f.store, rules.FixedClock{T: issued.Add(2 * time.Hour)}, testSecret, time.Hour)
	_, err = later.Authenticate(f.ctx, res.Token)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestAuthenticate_RejectsForeignToken(t *testing.T) {
	f := newFixture(t, time.Now())
	auth := NewAuthService(f.store, f.clock, testSecret, time.Hour)

	forged, err := utils.GenerateJWT([]byte("other-secret"), f.actor.StaffID, models.RoleAdmin, time.Now(), time.Hour)
	require.NoError(t, err)
	_, err = auth.Authenticate(f.ctx, forged)
	assert.Error(t, err)

	_, err = auth.Authenticate(f.ctx, "")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestStaffService(t *testing.T) {
	f := newFixture(t, time.Now())
	svc := f.staffSvc()

	_, err := svc.Create(f.ctx, &CreateStaffRequest{Username: "CASHIER", Password: "long-enough", FullName: "Trùng", Role: models.RoleStaff})
	var dup *rules.DuplicateKeyError
	assert.ErrorAs(t, err, &dup)

	_, err = svc.Create(f.ctx, &CreateStaffRequest{Username: "tech", Password: "short", FullName: "Kỹ thuật", Role: models.RoleStaff})
	var invalid *rules.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "password", invalid.Field)

	_, err = svc.Create(f.ctx, &CreateStaffRequest{Username: "tech", Password: "long-enough", FullName: "Kỹ thuật", Role: "owner"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "role", invalid.Field)

	err = svc.ChangePassword(f.ctx, f.actor, &ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(f.ctx, f.actor, &ChangePasswordRequest{CurrentPassword: "cashier-pass", NewPassword: "brand-new-pass"}))

	auth := NewAuthService(f.store, f.clock, testSecret, time.Hour)
	_, err = auth.Login(f.ctx, &LoginRequest{Username: "cashier", Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t, time.Now())
	// the fixture already has a cashier, so nothing is created
	require.NoError(t, f.staffSvc().EnsureAdmin(f.ctx, config.AdminConfig{Username: "admin", Password: "admin-pass", FullName: "Admin"}))
	list, err := f.staffSvc().List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
