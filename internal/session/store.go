// Package session persists the per-user discount reference between the cart
// apply step and checkout. The resolved discount itself travels explicitly in
// the checkout context; this store is only its backing persistence.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	DiscountCode(ctx context.Context, userID string) (string, error)
	SetDiscountCode(ctx context.Context, userID, code string) error
	ClearDiscountCode(ctx context.Context, userID string) error
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return fmt.Sprintf("session:%s:discount_code", userID)
}

func (s *RedisStore) DiscountCode(ctx context.Context, userID string) (string, error) {
	code, err := s.rdb.Get(ctx, key(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) SetDiscountCode(ctx context.Context, userID, code string) error {
	return s.rdb.Set(ctx, key(userID), code, s.ttl).Err()
}

func (s *RedisStore) ClearDiscountCode(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

// MemoryStore backs sessions for tests and single-node development runs
// where no Redis is configured.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]string)}
}

func (s *MemoryStore) DiscountCode(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[userID], nil
}

func (s *MemoryStore) SetDiscountCode(_ context.Context, userID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[userID] = code
	return nil
}

func (s *MemoryStore) ClearDiscountCode(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, userID)
	return nil
}
