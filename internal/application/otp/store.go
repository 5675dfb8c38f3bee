package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-auth-api/internal/domain"
)

// keyValueStore is the atomic key-value contract the store requires.
// Implemented by the Redis adapter; every operation must be atomic on the
// store side — issue and verify are called concurrently for the same key
// (duplicate signup clicks, parallel verification attempts).
type keyValueStore interface {
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)
}

// Store manages single-use, TTL-bounded numeric codes. At most one live code
// exists per key; a code is consumed by the first successful verification.
type Store struct {
	kv keyValueStore
}

func NewStore(kv keyValueStore) *Store {
	return &Store{kv: kv}
}

// Issue generates a 6-digit code and claims the key for it. If a live code
// already exists the key is left untouched and ErrOTPAlreadyPending is
// returned; the caller should tell the user to wait.
func (s *Store) Issue(ctx context.Context, key string, ttl time.Duration) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	ok, err := s.kv.SetIfAbsent(ctx, key, code, ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrOTPAlreadyPending
	}
	return code, nil
}

// Verify checks submitted against the live code for key. A match consumes the
// entry; a mismatch leaves it intact so the user may retry within the TTL.
// An absent key reports false — callers must not distinguish "wrong code"
// from "never issued".
func (s *Store) Verify(ctx context.Context, key, submitted string) (bool, error) {
	stored, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found || stored != submitted {
		return false, nil
	}
	// The entry may have expired or been consumed between the read and the
	// delete; only the caller that performs the deletion wins.
	return s.kv.DeleteIfEquals(ctx, key, submitted)
}

// generateCode draws uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
