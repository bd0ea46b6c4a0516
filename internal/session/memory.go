package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryCapacity bounds the number of live sessions a MemoryStore holds.
const DefaultMemoryCapacity = 100_000

// MemoryStore keeps sessions in process. It suits a single server instance
// and tests; sessions do not survive a restart. Past capacity the least
// recently used session is dropped before its TTL.
type MemoryStore struct {
	cache *expirable.LRU[string, string]
}

func NewMemoryStore(ttl time.Duration, capacity int) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{cache: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

func (s *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	token := newToken()
	s.cache.Add(key(token), userID)
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	userID, ok := s.cache.Get(key(token))
	return userID, ok, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.cache.Remove(key(token))
	return nil
}

func (s *MemoryStore) IsAlive(context.Context) bool {
	return true
}
