package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// AuthService signs staff in and resolves session tokens back to actors.
type AuthService struct {
	store  *repository.Store
	clock  rules.Clock
	secret []byte
	ttl    time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(store *repository.Store, clock rules.Clock, secret string, ttl time.Duration) *AuthService {
	return &AuthService{store: store, clock: clock, secret: []byte(secret), ttl: ttl}
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is a signed session for the staff member.
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Staff     *models.Staff `json:"staff"`
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	log.Debug().Str("username", username).Msg("Login attempt")

	staff, err := s.store.Staff.GetByUsername(ctx, username)
	if err != nil {
		if rules.IsNotFound(err) {
			log.Warn().Str("username", username).Msg("Login for unknown user")
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Str("username", username).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}
	if !staff.IsActive {
		log.Warn().Str("username", username).Msg("Account is inactive")
		return nil, utils.ErrAccountInactive
	}

	now := s.clock.Now()
	token, err := utils.GenerateJWT(s.secret, staff.ID, staff.Role, now, s.ttl)
	if err != nil {
		return nil, err
	}
	stamp := rules.StampOf(now)
	if err := s.store.Staff.TouchLogin(ctx, staff.ID, stamp); err != nil {
		return nil, err
	}
	staff.LastLoginAt = &stamp

	log.Info().Int("staff_id", staff.ID).Str("role", string(staff.Role)).Msg("Login successful")
	return &LoginResult{Token: token, ExpiresAt: now.Add(s.ttl).UTC(), Staff: staff}, nil
}

// Authenticate validates a session token. A token for an account that has
// since been deactivated is rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	if token == "" {
		return models.Actor{}, utils.ErrInvalidToken
	}
	claims, err := utils.ValidateJWT(s.secret, token, s.clock.Now())
	if err != nil {
		return models.Actor{}, err
	}
	staff, err := s.store.Staff.GetByID(ctx, claims.StaffID)
	if err != nil {
		if rules.IsNotFound(err) {
			return models.Actor{}, utils.ErrInvalidToken
		}
		return models.Actor{}, err
	}
	if !staff.IsActive {
		return models.Actor{}, utils.ErrAccountInactive
	}
	return models.Actor{StaffID: staff.ID, Role: staff.Role}, nil
}
