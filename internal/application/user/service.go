package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

// verificationStarter kicks off the OTP flow after an account is created.
type verificationStarter interface {
	Start(ctx context.Context, u *domain.User) error
}

type service struct {
	repo         userStore
	verification verificationStarter
}

func NewService(repo userStore, verification verificationStarter) Service {
	return &service{repo: repo, verification: verification}
}

// Register creates an unverified account and triggers code delivery. The
// account is created either way; a delivery failure only means the user has
// to request the code again, so it is logged rather than returned.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Verified:     false,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	if err := s.verification.Start(ctx, u); err != nil {
		slog.Warn("could not deliver verification code", "user_id", u.UserID, "err", err)
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}
