package redisinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// deleteIfEquals deletes the key only when its current value matches ARGV[1].
// GET + DEL from this layer would race with concurrent verifiers; the script
// makes the compare-and-delete a single Redis operation.
var deleteIfEquals = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// KV exposes the three atomic key-value operations the OTP lifecycle needs.
// Every transport/store failure is wrapped as domain.ErrStoreUnavailable so
// callers can tell a flaky store apart from a rejected code.
type KV struct {
	client *redis.Client
}

func NewKV(client *redis.Client) *KV {
	return &KV{client: client}
}

// SetIfAbsent writes key=value with the given TTL only if the key has no live
// value. Returns false when a value already exists. The write and the expiry
// are a single SET NX EX command.
func (s *KV) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %v: %w", key, err, domain.ErrStoreUnavailable)
	}
	return ok, nil
}

// Get returns the live value for key, or found=false when none exists.
func (s *KV) Get(ctx context.Context, key string) (value string, found bool, err error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %v: %w", key, err, domain.ErrStoreUnavailable)
	}
	return v, true, nil
}

// DeleteIfEquals atomically deletes key when its value equals value.
// Returns true only when this call performed the deletion.
func (s *KV) DeleteIfEquals(ctx context.Context, key, value string) (bool, error) {
	n, err := deleteIfEquals.Run(ctx, s.client, []string{key}, value).Int()
	if err != nil {
		return false, fmt.Errorf("compare-and-delete %s: %v: %w", key, err, domain.ErrStoreUnavailable)
	}
	return n == 1, nil
}
