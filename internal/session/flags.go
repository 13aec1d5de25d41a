package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// FlagStore is the ephemeral key-value space holding session-active
// markers. Keys are "session:<login>" per participant plus
// "session:<loginA>:<loginB>" for the ordered pair; values are "active"
// or "inactive". No other session state is ever persisted.
type FlagStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const (
	flagActive   = "active"
	flagInactive = "inactive"
)

func userFlagKey(login string) string { return "session:" + login }

func pairFlagKey(initiator, target string) string {
	return fmt.Sprintf("session:%s:%s", initiator, target)
}

// RedisFlagStore backs FlagStore with Redis. A missing key reads as the
// empty string rather than an error.
type RedisFlagStore struct{ RDB *redis.Client }

func NewRedisFlagStore(rdb *redis.Client) *RedisFlagStore {
	return &RedisFlagStore{RDB: rdb}
}

func (s *RedisFlagStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *RedisFlagStore) Set(ctx context.Context, key, value string) error {
	return s.RDB.Set(ctx, key, value, 0).Err()
}

func (s *RedisFlagStore) Delete(ctx context.Context, key string) error {
	return s.RDB.Del(ctx, key).Err()
}
