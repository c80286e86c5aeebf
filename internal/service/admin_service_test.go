package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

func newAdminFixture(t *testing.T) (*AdminService, repository.AdminRepository, *auth.MemorySessionStore) {
	t.Helper()
	repo := repository.NewAdminRepository(persistence.NewMemoryDocumentStore())
	sessions := auth.NewMemorySessionStore()
	svc := NewAdminService(AdminDependencies{AdminRepo: repo, SessionStore: sessions})
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, sessions
}

func TestAuthorizeThenRevoke(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAdminFixture(t)
	actor := seedAdmin(t, repo, activeAdmin("boss", "boss@example.com"), "")
	pending := activeAdmin("newbie", "newbie@example.com")
	pending.IsAuthorized = false
	pending.Status = domain.AdminStatusPendingAuthorization
	target := seedAdmin(t, repo, pending, "")

	authorized, err := svc.Authorize(ctx, actor, target.ID)
	require.NoError(t, err)
	assert.True(t, authorized.IsAuthorized)
	assert.Equal(t, domain.AdminStatusAuthorized, authorized.Status)
	assert.Equal(t, "boss", authorized.AuthorizedBy)
	require.NotNil(t, authorized.AuthorizedAt)

	again, err := svc.Authorize(ctx, actor, target.ID)
	require.NoError(t, err)
	assert.Equal(t, authorized.Status, again.Status)

	revoked, err := svc.Revoke(ctx, actor, target.ID)
	require.NoError(t, err)
	assert.False(t, revoked.IsAuthorized)
	assert.Equal(t, domain.AdminStatusRevoked, revoked.Status)
	assert.True(t, revoked.IsActive, "revocation leaves isActive alone")
	assert.Equal(t, "boss", revoked.RevokedBy)
	require.NotNil(t, revoked.RevokedAt)
}

func TestRevokeDropsSessions(t *testing.T) {
	ctx := context.Background()
	svc, repo, sessions := newAdminFixture(t)
	actor := seedAdmin(t, repo, activeAdmin("boss", "boss@example.com"), "")
	target := seedAdmin(t, repo, activeAdmin("ops", "ops@example.com"), "")
	require.NoError(t, sessions.Save(ctx, &domain.AdminSession{ID: "s1", AdminID: target.ID, ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := svc.Revoke(ctx, actor, target.ID)
	require.NoError(t, err)
	got, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.Revoke(ctx, actor, actor.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = svc.Authorize(ctx, actor, "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAdminFixture(t)
	super := activeAdmin("root", "root@example.com")
	super.Role = domain.AdminRoleSuperAdmin
	root := seedAdmin(t, repo, super, "")
	plain := seedAdmin(t, repo, activeAdmin("ops", "ops@example.com"), "")

	_, err := svc.Deactivate(ctx, plain, root.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = svc.Deactivate(ctx, root, root.ID)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	got, err := svc.Deactivate(ctx, root, plain.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, got.IsAuthorized)
	require.NotNil(t, got.DeactivatedAt)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, a := range list {
		assert.Empty(t, a.PasswordHash)
	}
}
