package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/config"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// AuthService coordinates admin login, sessions and password management.
type AuthService struct {
	admins         repository.AdminRepository
	sessions       auth.SessionStore
	dispatcher     events.Dispatcher
	resolver       *CredentialResolver
	tokenMgr       *auth.TokenManager
	bcryptCost     int
	sessionTTL     time.Duration
	passwordMaxAge time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	AdminRepo    repository.AdminRepository
	SessionStore auth.SessionStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Admin          domain.AdminAccount
	Session        domain.AdminSession
	Token          string
	ExpiresAt      time.Time
	PasswordStatus PasswordStatus
}

// RegisterAdminInput describes a registration request.
type RegisterAdminInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

// PasswordStatus reports whether an admin must rotate their password.
type PasswordStatus struct {
	MustChange      bool       `json:"mustChange"`
	LastChanged     *time.Time `json:"lastChanged,omitempty"`
	DaysSinceChange int        `json:"daysSinceChange"`
	MaxAgeDays      int        `json:"maxAgeDays"`
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		admins:         deps.AdminRepo,
		sessions:       deps.SessionStore,
		dispatcher:     deps.Dispatcher,
		resolver:       NewCredentialResolver(deps.AdminRepo, cfg.Auth, logger),
		tokenMgr:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:     cfg.Auth.BcryptCost,
		sessionTTL:     cfg.Auth.SessionTTL(),
		passwordMaxAge: cfg.Auth.PasswordMaxAge(),
		logger:         logger,
		now:            time.Now,
	}
}

// Login authenticates an admin and opens a session.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	admin, err := s.resolver.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := domain.AdminSession{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		Username:  admin.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, &session); err != nil {
		return nil, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(&session, admin.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID), zap.String("session_id", session.ID))
	return &LoginResult{
		Admin:          *admin,
		Session:        session,
		Token:          token,
		ExpiresAt:      exp,
		PasswordStatus: s.PasswordStatus(admin),
	}, nil
}

// Logout drops the server-side session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ValidateSession resolves a session into its admin without mutating anything.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*domain.AdminSession, *domain.AdminAccount, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.Expired(s.now()) {
		return nil, nil, apperrors.NewUnauthorized("session expired")
	}

	admin, err := s.admins.GetByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, persistence.ErrDocumentNotFound) {
			return nil, nil, apperrors.NewUnauthorized("admin not found")
		}
		return nil, nil, err
	}
	if !admin.CanLogin() {
		return nil, nil, apperrors.NewUnauthorized("account is no longer allowed to sign in")
	}

	stripped := admin.WithoutSecrets()
	return session, &stripped, nil
}

// RegisterAdmin creates an account awaiting authorization. The first account ever
// created is bootstrapped as an authorized super admin.
func (s *AuthService) RegisterAdmin(ctx context.Context, input RegisterAdminInput) (*domain.AdminAccount, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Password = strings.TrimSpace(input.Password)

	if err := auth.ValidatePasswordStrength(input.Password); err != nil {
		return nil, err
	}

	existing, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.Username == input.Username {
			return nil, apperrors.NewConflict("username already registered", map[string]any{"field": "username"})
		}
		if strings.EqualFold(a.Email, input.Email) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	admin := &domain.AdminAccount{
		Username:            input.Username,
		Email:               input.Email,
		Name:                input.Name,
		Role:                domain.AdminRoleAdmin,
		PasswordHash:        hash,
		IsActive:            true,
		IsAuthorized:        false,
		Status:              domain.AdminStatusPendingAuthorization,
		PasswordLastChanged: &now,
		CreatedAt:           now,
	}
	if len(existing) == 0 {
		admin.Role = domain.AdminRoleSuperAdmin
		admin.IsAuthorized = true
		admin.Status = domain.AdminStatusAuthorized
		admin.AuthorizedAt = &now
		admin.AuthorizedBy = "bootstrap"
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventAdminRegistered, admin.ID, events.Actor{}, events.AdminRegisteredPayload{
		Username: admin.Username,
		Email:    admin.Email,
		Name:     admin.Name,
		Status:   admin.Status,
	}))

	stripped := admin.WithoutSecrets()
	return &stripped, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return err
	}

	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	if !matchesStoredPassword(admin, currentPassword) {
		return ErrInvalidCredentials
	}
	if newPassword == currentPassword {
		return apperrors.NewValidationError("new password must differ from the current one", map[string]any{"field": "new_password"})
	}
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	cleared := ""
	return s.admins.Update(ctx, adminID, repository.AdminPatch{
		PasswordHash:        &hash,
		LegacyPassword:      &cleared,
		PasswordLastChanged: &now,
		UpdatedAt:           &now,
	})
}

// PasswordStatus reports whether the admin's password is older than the allowed age.
func (s *AuthService) PasswordStatus(admin *domain.AdminAccount) PasswordStatus {
	status := PasswordStatus{MaxAgeDays: int(s.passwordMaxAge / (24 * time.Hour))}
	if admin.PasswordLastChanged == nil {
		status.MustChange = true
		return status
	}
	status.LastChanged = admin.PasswordLastChanged
	age := s.now().Sub(*admin.PasswordLastChanged)
	status.DaysSinceChange = int(age / (24 * time.Hour))
	status.MustChange = s.passwordMaxAge > 0 && age >= s.passwordMaxAge
	return status
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func matchesStoredPassword(admin *domain.AdminAccount, password string) bool {
	if admin.PasswordHash != "" {
		return auth.ComparePassword(admin.PasswordHash, password) == nil
	}
	return auth.CompareLegacyPassword(admin.LegacyPassword, password)
}
