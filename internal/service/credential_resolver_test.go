package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

func newResolver(t *testing.T, store persistence.DocumentStore) (*CredentialResolver, repository.AdminRepository) {
	t.Helper()
	repo := repository.NewAdminRepository(store)
	r := NewCredentialResolver(repo, testConfig().Auth, zaptest.NewLogger(t))
	r.now = func() time.Time { return fixedNow }
	return r, repo
}

func TestAuthenticateSuccessIncrementsLoginCount(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	seeded := activeAdmin("alice", "alice@example.com")
	seeded.LoginCount = 4
	created := seedAdmin(t, repo, seeded, "Passw0rd!")

	got, err := r.Authenticate(ctx, "alice", "  Passw0rd!  ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 5, got.LoginCount)
	assert.Empty(t, got.PasswordHash)
	assert.Empty(t, got.LegacyPassword)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.LoginCount)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, fixedNow.Equal(*stored.LastLogin))
	assert.NotEmpty(t, stored.PasswordHash, "stored hash is kept")
}

func TestAuthenticateDisabledAccountAlwaysDisabled(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	admin := activeAdmin("bob", "bob@example.com")
	admin.IsActive = false
	seedAdmin(t, repo, admin, "Passw0rd!")

	for _, pw := range []string{"Passw0rd!", "wrong"} {
		_, err := r.Authenticate(ctx, "bob", pw)
		assert.ErrorIs(t, err, ErrAccountDisabled, pw)
	}
}

func TestAuthenticateWrongPasswordMatchesUnknownIdentifier(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	seedAdmin(t, repo, activeAdmin("carol", "carol@example.com"), "Passw0rd!")

	_, wrongPw := r.Authenticate(ctx, "carol", "nope")
	_, unknown := r.Authenticate(ctx, "nobody", "Passw0rd!")
	require.Error(t, wrongPw)
	require.Error(t, unknown)
	assert.Equal(t, apperrors.ToDomainError(unknown).Code, apperrors.ToDomainError(wrongPw).Code)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.ToDomainError(wrongPw).Code)
}

func TestAuthenticateValidationOrder(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	pending := activeAdmin("dave", "dave@example.com")
	pending.IsAuthorized = false
	pending.Status = domain.AdminStatusPendingAuthorization
	seedAdmin(t, repo, pending, "Passw0rd!")

	_, err := r.Authenticate(ctx, "dave", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "password is checked before authorization")

	_, err = r.Authenticate(ctx, "dave", "Passw0rd!")
	assert.ErrorIs(t, err, ErrNotYetAuthorized)
}

func TestAuthenticateUsernameBeatsEmail(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	// The email owner is created first so insertion order cannot explain the result.
	byEmail := seedAdmin(t, repo, activeAdmin("erin", "shared@example.com"), "Passw0rd!")
	byName := seedAdmin(t, repo, activeAdmin("shared@example.com", "frank@example.com"), "Passw0rd!")

	got, err := r.Authenticate(ctx, "shared@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, got.ID)
	assert.NotEqual(t, byEmail.ID, got.ID)
}

func TestAuthenticateByEmail(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	admin := seedAdmin(t, repo, activeAdmin("gina", "gina@example.com"), "Passw0rd!")

	got, err := r.Authenticate(ctx, "gina@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
}

func TestAuthenticateEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.RegisterAdmin(ctx, RegisterAdminInput{Username: "bob", Email: "Bob@X.io", Password: "Str0ng!pw"})
	require.NoError(t, err)

	r := NewCredentialResolver(f.admins, testConfig().Auth, zaptest.NewLogger(t))
	got, err := r.Authenticate(ctx, "Bob@X.io", "Str0ng!pw")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	// Usernames stay exact.
	_, err = r.Authenticate(ctx, "BOB", "Str0ng!pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateScanMatchesEmailIgnoringCase(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.failFind = true
	r, repo := newResolver(t, store)
	admin := seedAdmin(t, repo, activeAdmin("kim", "Kim@Example.com"), "Passw0rd!")

	got, err := r.Authenticate(ctx, "kim@EXAMPLE.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
}

func TestAuthenticateScanFallbackWhenQueriesFail(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	store.failFind = true
	r, repo := newResolver(t, store)
	byEmail := seedAdmin(t, repo, activeAdmin("hank", "shared@example.com"), "Passw0rd!")
	byName := seedAdmin(t, repo, activeAdmin("shared@example.com", "ivy@example.com"), "Passw0rd!")

	got, err := r.Authenticate(ctx, "shared@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, got.ID, "scan checks usernames before emails")
	assert.NotEqual(t, byEmail.ID, got.ID)
	assert.Equal(t, 1, store.findAllHit)
}

func TestAuthenticateBackendUnavailableOnlyWhenEveryStrategyFails(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	r, repo := newResolver(t, store)
	seedAdmin(t, repo, activeAdmin("jack", "jack@example.com"), "Passw0rd!")

	store.failFind = true
	store.failList = true
	_, err := r.Authenticate(ctx, "jack", "Passw0rd!")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Equal(t, "BACKEND_UNAVAILABLE", apperrors.ToDomainError(err).Code)

	store.failList = false
	_, err = r.Authenticate(ctx, "nobody", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "a working scan turns failures into a plain miss")
}

func TestAuthenticateWithoutScanFallback(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	r, repo := newResolver(t, store)
	r.scanFallback = false
	seedAdmin(t, repo, activeAdmin("kim", "kim@example.com"), "Passw0rd!")

	_, err := r.Authenticate(ctx, "nobody", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, store.findAllHit)

	store.failFind = true
	_, err = r.Authenticate(ctx, "kim", "Passw0rd!")
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestAuthenticateCorrectsStatusDrift(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	drifted := activeAdmin("lee", "lee@example.com")
	drifted.Status = domain.AdminStatusPendingAuthorization
	admin := seedAdmin(t, repo, drifted, "Passw0rd!")

	got, err := r.Authenticate(ctx, "lee", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, domain.AdminStatusAuthorized, got.Status)

	stored, err := repo.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdminStatusAuthorized, stored.Status)
}

func TestAuthenticateUpgradesLegacyPassword(t *testing.T) {
	ctx := context.Background()
	r, repo := newResolver(t, persistence.NewMemoryDocumentStore())
	legacy := activeAdmin("mia", "mia@example.com")
	legacy.LegacyPassword = "OldPlain1!"
	admin := seedAdmin(t, repo, legacy, "")

	_, err := r.Authenticate(ctx, "mia", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.Authenticate(ctx, "mia", " OldPlain1! ")
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LegacyPassword)
	require.NotEmpty(t, stored.PasswordHash)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "OldPlain1!"))

	_, err = r.Authenticate(ctx, "mia", "OldPlain1!")
	assert.NoError(t, err, "upgraded account logs in through the hash")
}
