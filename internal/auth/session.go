package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/verif-backoffice/internal/domain"
)

// SessionStore keeps the server-side half of admin sessions.
// Get returns (nil, nil) for unknown or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *domain.AdminSession) error
	Get(ctx context.Context, id string) (*domain.AdminSession, error)
	Delete(ctx context.Context, id string) error
	DeleteByAdmin(ctx context.Context, adminID string) error
}

// RedisSessionStore stores sessions as JSON values with a TTL matching their expiry.
// Each admin also owns a set of session ids so revocation can drop every session at once.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSessionStore builds a store using keys under prefix.
func NewRedisSessionStore(client redis.UniversalClient, prefix string) *RedisSessionStore {
	if prefix == "" {
		prefix = "backoffice"
	}
	return &RedisSessionStore{client: client, prefix: prefix}
}

func (s *RedisSessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *RedisSessionStore) adminKey(adminID string) string {
	return fmt.Sprintf("%s:admin_sessions:%s", s.prefix, adminID)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *domain.AdminSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID), data, ttl)
	pipe.SAdd(ctx, s.adminKey(session.AdminID), session.ID)
	pipe.Expire(ctx, s.adminKey(session.AdminID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.AdminSession, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session domain.AdminSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(id))
	if session != nil {
		pipe.SRem(ctx, s.adminKey(session.AdminID), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) DeleteByAdmin(ctx context.Context, adminID string) error {
	ids, err := s.client.SMembers(ctx, s.adminKey(adminID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, s.adminKey(adminID))
	return s.client.Del(ctx, keys...).Err()
}

// MemorySessionStore is the in-process fallback used when Redis is unavailable.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.AdminSession
	now      func() time.Time
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domain.AdminSession), now: time.Now}
}

func (s *MemorySessionStore) Save(_ context.Context, session *domain.AdminSession) error {
	if session.Expired(s.now()) {
		return errors.New("session already expired")
	}
	s.mu.Lock()
	s.sessions[session.ID] = *session
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.AdminSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) DeleteByAdmin(_ context.Context, adminID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.AdminID == adminID {
			delete(s.sessions, id)
		}
	}
	return nil
}
