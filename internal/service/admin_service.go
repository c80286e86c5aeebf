package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// AdminService manages the authorization state of admin accounts.
type AdminService struct {
	admins   repository.AdminRepository
	sessions auth.SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// AdminDependencies bundles requirements for the admin service.
type AdminDependencies struct {
	AdminRepo    repository.AdminRepository
	SessionStore auth.SessionStore
	Logger       *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{admins: deps.AdminRepo, sessions: deps.SessionStore, logger: logger, now: time.Now}
}

// List returns every admin without password material.
func (s *AdminService) List(ctx context.Context) ([]domain.AdminAccount, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	return stripAll(admins), nil
}

// ListPending returns admins awaiting authorization.
func (s *AdminService) ListPending(ctx context.Context) ([]domain.AdminAccount, error) {
	admins, err := s.admins.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return stripAll(admins), nil
}

// Get returns one admin.
func (s *AdminService) Get(ctx context.Context, id string) (*domain.AdminAccount, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stripped := admin.WithoutSecrets()
	return &stripped, nil
}

// Authorize lets the account log in. Calling it again only refreshes the stamps.
func (s *AdminService) Authorize(ctx context.Context, actor *domain.AdminAccount, id string) (*domain.AdminAccount, error) {
	if _, err := s.admins.GetByID(ctx, id); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	authorized := true
	status := domain.AdminStatusAuthorized
	by := actor.Username
	if err := s.admins.Update(ctx, id, repository.AdminPatch{
		IsAuthorized: &authorized,
		Status:       &status,
		AuthorizedAt: &now,
		AuthorizedBy: &by,
		UpdatedAt:    &now,
	}); err != nil {
		return nil, err
	}
	s.logger.Info("admin authorized", zap.String("admin_id", id), zap.String("by", by))
	return s.Get(ctx, id)
}

// Revoke withdraws authorization and ends the account's sessions. isActive is untouched.
func (s *AdminService) Revoke(ctx context.Context, actor *domain.AdminAccount, id string) (*domain.AdminAccount, error) {
	if actor.ID == id {
		return nil, apperrors.NewForbidden("admins cannot revoke themselves")
	}
	if _, err := s.admins.GetByID(ctx, id); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	authorized := false
	status := domain.AdminStatusRevoked
	by := actor.Username
	if err := s.admins.Update(ctx, id, repository.AdminPatch{
		IsAuthorized: &authorized,
		Status:       &status,
		RevokedAt:    &now,
		RevokedBy:    &by,
		UpdatedAt:    &now,
	}); err != nil {
		return nil, err
	}
	s.dropSessions(ctx, id)
	s.logger.Info("admin revoked", zap.String("admin_id", id), zap.String("by", by))
	return s.Get(ctx, id)
}

// Deactivate disables an account. Only super admins may do this, and never on themselves.
func (s *AdminService) Deactivate(ctx context.Context, actor *domain.AdminAccount, id string) (*domain.AdminAccount, error) {
	if !actor.IsSuperAdmin() {
		return nil, apperrors.NewForbidden("super admin role required")
	}
	if actor.ID == id {
		return nil, apperrors.NewForbidden("admins cannot deactivate themselves")
	}
	if _, err := s.admins.GetByID(ctx, id); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	active := false
	if err := s.admins.Update(ctx, id, repository.AdminPatch{
		IsActive:      &active,
		DeactivatedAt: &now,
		UpdatedAt:     &now,
	}); err != nil {
		return nil, err
	}
	s.dropSessions(ctx, id)
	s.logger.Info("admin deactivated", zap.String("admin_id", id), zap.String("by", actor.Username))
	return s.Get(ctx, id)
}

func (s *AdminService) dropSessions(ctx context.Context, adminID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.DeleteByAdmin(ctx, adminID); err != nil {
		// ValidateSession rejects the account anyway.
		s.logger.Warn("could not drop admin sessions", zap.String("admin_id", adminID), zap.Error(err))
	}
}

func stripAll(admins []domain.AdminAccount) []domain.AdminAccount {
	out := make([]domain.AdminAccount, 0, len(admins))
	for _, a := range admins {
		out = append(out, a.WithoutSecrets())
	}
	return out
}
