package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-todo-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// RevocationStore remembers signed-out access tokens until they would have
// expired anyway. Tokens are stored as sha256 digests.
type RevocationStore struct {
	client *goredis.Client

	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewRevocationStore uses Redis when client is non-nil and process memory otherwise.
func NewRevocationStore(client *goredis.Client) *RevocationStore {
	return &RevocationStore{
		client:  client,
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

func (s *RevocationStore) Revoke(ctx context.Context, token string, until time.Time) error {
	if token == "" {
		return nil
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	key := tokenKey(token)

	if s.client != nil {
		if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[key] = until
	s.sweepLocked()
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := tokenKey(token)

	if s.client != nil {
		_, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("check revocation: %w", err)
		}
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[key]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, key)
		return false, nil
	}
	return true, nil
}

func (s *RevocationStore) sweepLocked() {
	now := s.now()
	for k, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, k)
		}
	}
}

var _ domain.SessionRevoker = (*RevocationStore)(nil)
