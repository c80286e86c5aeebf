package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/verif-backoffice/internal/auth"
	"github.com/spec-kit/verif-backoffice/internal/config"
	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
)

var fixedNow = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			SessionTTLMinutes:     60,
			BcryptCost:            bcrypt.MinCost,
			LookupScanFallback:    true,
			PasswordMaxAgeDays:    90,
		},
	}
}

// flakyStore fails reads of selected operations.
type flakyStore struct {
	persistence.DocumentStore
	mu         sync.Mutex
	failFind   bool
	failList   bool
	findCalls  []map[string]any
	findAllHit int
}

var errStoreDown = errors.New("store unavailable")

func (s *flakyStore) Find(ctx context.Context, collection string, q persistence.Query) ([]persistence.Document, error) {
	s.mu.Lock()
	s.findCalls = append(s.findCalls, q.Where)
	fail := s.failFind && len(q.Where) > 0
	failAll := s.failList && len(q.Where) == 0
	if len(q.Where) == 0 {
		s.findAllHit++
	}
	s.mu.Unlock()
	if fail || failAll {
		return nil, errStoreDown
	}
	return s.DocumentStore.Find(ctx, collection, q)
}

func (s *flakyStore) FindAll(ctx context.Context, collection string) ([]persistence.Document, error) {
	return s.Find(ctx, collection, persistence.Query{})
}

func newFlakyStore() *flakyStore {
	return &flakyStore{DocumentStore: persistence.NewMemoryDocumentStore()}
}

func seedAdmin(t *testing.T, repo repository.AdminRepository, admin domain.AdminAccount, password string) *domain.AdminAccount {
	t.Helper()
	if password != "" {
		hash, err := auth.HashPassword(password, bcrypt.MinCost)
		require.NoError(t, err)
		admin.PasswordHash = hash
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = fixedNow.Add(-time.Hour)
	}
	require.NoError(t, repo.Create(context.Background(), &admin))
	return &admin
}

func activeAdmin(username, email string) domain.AdminAccount {
	return domain.AdminAccount{
		Username:     username,
		Email:        email,
		Name:         username,
		Role:         domain.AdminRoleAdmin,
		IsActive:     true,
		IsAuthorized: true,
		Status:       domain.AdminStatusAuthorized,
	}
}

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handler(_ context.Context, e events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recordedEvents) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func recordingDispatcher(types ...events.EventType) (events.Dispatcher, *recordedEvents) {
	d := events.NewInMemoryDispatcher(nil)
	rec := &recordedEvents{}
	for _, t := range types {
		d.Subscribe(t, rec.handler)
	}
	return d, rec
}
