package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/config"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// Login failures. Unknown identifiers and wrong passwords share ErrInvalidCredentials.
var (
	ErrInvalidCredentials = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	ErrAccountDisabled    = apperrors.NewDomainError("ACCOUNT_DISABLED", "account is disabled", http.StatusForbidden, nil)
	ErrNotYetAuthorized   = apperrors.NewDomainError("NOT_YET_AUTHORIZED", "account is awaiting authorization", http.StatusForbidden, nil)
	ErrBackendUnavailable = apperrors.NewDomainError("BACKEND_UNAVAILABLE", "account store unavailable", http.StatusServiceUnavailable, nil)
)

type lookupStrategy struct {
	name string
	run  func(ctx context.Context, identifier string) ([]domain.AdminAccount, error)
}

// CredentialResolver locates an admin account by username or email and checks it can log in.
type CredentialResolver struct {
	admins       repository.AdminRepository
	logger       *zap.Logger
	scanFallback bool
	bcryptCost   int
	now          func() time.Time
}

// NewCredentialResolver builds the resolver.
func NewCredentialResolver(admins repository.AdminRepository, cfg config.AuthConfig, logger *zap.Logger) *CredentialResolver {
	return &CredentialResolver{
		admins:       admins,
		logger:       logger,
		scanFallback: cfg.LookupScanFallback,
		bcryptCost:   cfg.BcryptCost,
		now:          time.Now,
	}
}

// Authenticate resolves identifier to an account, validates it and records the login.
// The returned account carries no password material.
func (r *CredentialResolver) Authenticate(ctx context.Context, identifier, password string) (*domain.AdminAccount, error) {
	account, err := r.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	switch {
	case account == nil:
		return nil, ErrInvalidCredentials
	case !account.IsActive:
		return nil, ErrAccountDisabled
	}

	upgradeHash, ok := r.verifyPassword(account, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !account.IsAuthorized {
		return nil, ErrNotYetAuthorized
	}

	now := r.now().UTC()
	loginCount := account.LoginCount + 1
	patch := repository.AdminPatch{
		LoginCount: &loginCount,
		LastLogin:  &now,
	}
	if account.Status != domain.AdminStatusAuthorized {
		status := domain.AdminStatusAuthorized
		patch.Status = &status
		account.Status = status
	}
	if upgradeHash != "" {
		cleared := ""
		patch.PasswordHash = &upgradeHash
		patch.LegacyPassword = &cleared
	}
	if err := r.admins.Update(ctx, account.ID, patch); err != nil {
		return nil, err
	}

	account.LoginCount = loginCount
	account.LastLogin = &now
	stripped := account.WithoutSecrets()
	return &stripped, nil
}

// lookup runs the strategies in order and returns the first account found.
// A strategy that fails is logged and treated as a miss; only when every
// attempted strategy failed is the store reported unavailable.
func (r *CredentialResolver) lookup(ctx context.Context, identifier string) (*domain.AdminAccount, error) {
	if identifier == "" {
		return nil, nil
	}

	strategies := []lookupStrategy{
		{name: "username", run: r.admins.FindByUsername},
		{name: "email", run: r.findByEmail},
	}
	if r.scanFallback {
		strategies = append(strategies, lookupStrategy{name: "scan", run: r.scan})
	}

	failures := 0
	for _, s := range strategies {
		found, err := s.run(ctx, identifier)
		if err != nil {
			failures++
			r.logger.Warn("admin lookup strategy failed",
				zap.String("strategy", s.name),
				zap.Error(err))
			continue
		}
		if len(found) > 0 {
			account := found[0]
			return &account, nil
		}
	}
	if failures == len(strategies) {
		return nil, ErrBackendUnavailable
	}
	return nil, nil
}

// findByEmail matches the stored form, which registration lowercases.
func (r *CredentialResolver) findByEmail(ctx context.Context, identifier string) ([]domain.AdminAccount, error) {
	return r.admins.FindByEmail(ctx, strings.ToLower(identifier))
}

// scan reads every account and matches usernames before emails.
func (r *CredentialResolver) scan(ctx context.Context, identifier string) ([]domain.AdminAccount, error) {
	all, err := r.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		if a.Username == identifier {
			return []domain.AdminAccount{a}, nil
		}
	}
	for _, a := range all {
		if strings.EqualFold(a.Email, identifier) {
			return []domain.AdminAccount{a}, nil
		}
	}
	return nil, nil
}

// verifyPassword checks the trimmed password. For legacy plaintext records it
// also returns a fresh hash to store in place of the plaintext.
func (r *CredentialResolver) verifyPassword(account *domain.AdminAccount, password string) (string, bool) {
	password = strings.TrimSpace(password)
	if account.PasswordHash != "" {
		return "", auth.ComparePassword(account.PasswordHash, password) == nil
	}
	if !auth.CompareLegacyPassword(account.LegacyPassword, password) {
		return "", false
	}
	hash, err := auth.HashPassword(password, r.bcryptCost)
	if err != nil {
		r.logger.Warn("could not upgrade legacy password", zap.String("admin_id", account.ID), zap.Error(err))
		return "", true
	}
	return hash, true
}
