package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/token"
	"golang.org/x/crypto/bcrypt"
)

// Strategy is a named token-issuance configuration. Both strategies are built
// once at startup and passed by reference into whatever needs them; there is
// no process-wide registry.
type Strategy struct {
	Name      string
	TokenType token.Type
	Lifetime  time.Duration
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Backend authenticates credentials and issues/resolves typed token pairs.
// The access strategy is delivered as a bearer header, the refresh strategy
// as an HTTP-only cookie; the transport binding lives in the HTTP layer.
type Backend struct {
	codec   *token.Codec
	users   userStore
	access  Strategy
	refresh Strategy
}

func NewBackend(codec *token.Codec, users userStore, accessLifetime, refreshLifetime time.Duration) *Backend {
	return &Backend{
		codec:   codec,
		users:   users,
		access:  Strategy{Name: "access", TokenType: token.TypeAccess, Lifetime: accessLifetime},
		refresh: Strategy{Name: "refresh", TokenType: token.TypeRefresh, Lifetime: refreshLifetime},
	}
}

func (b *Backend) Access() Strategy  { return b.access }
func (b *Backend) Refresh() Strategy { return b.refresh }

// AuthenticateCredentials checks the password for the account. A missing
// account and a wrong password are reported identically.
func (b *Backend) AuthenticateCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := b.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Enable {
		return nil, domain.ErrInactiveAccount
	}
	return u, nil
}

// IssuePair issues one access and one refresh token for the account.
func (b *Backend) IssuePair(u *domain.User) (access, refresh string, err error) {
	access, err = b.Issue(u, b.access)
	if err != nil {
		return "", "", err
	}
	refresh, err = b.Issue(u, b.refresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Issue signs a token for the account under the given strategy.
func (b *Backend) Issue(u *domain.User, s Strategy) (string, error) {
	return b.codec.Issue(u.UserID, s.TokenType, s.Lifetime)
}

// Resolve validates the raw token under the strategy's expected type and
// resolves the subject to a full account. Every token failure collapses to
// ErrUnauthenticated; a subject that no longer resolves is ErrNotFound.
func (b *Backend) Resolve(ctx context.Context, s Strategy, rawToken string) (*domain.User, error) {
	subjectID, err := b.codec.Validate(rawToken, s.TokenType)
	if err != nil {
		return nil, fmt.Errorf("%s token rejected: %w", s.Name, domain.ErrUnauthenticated)
	}
	u, err := b.users.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account for subject no longer exists: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if !u.Enable {
		return nil, domain.ErrInactiveAccount
	}
	return u, nil
}
