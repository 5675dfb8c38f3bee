package http

import (
	"context"
	"time"

	"github.com/go-auth-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from an account store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	SetVerified(ctx context.Context, userID string) error
}

// KeyValueStore is the atomic key-value contract the OTP lifecycle requires.
type KeyValueStore interface {
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)
}

// Notifier delivers a verification code to an address out-of-band.
type Notifier interface {
	Deliver(ctx context.Context, address, code string) error
}
