package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/domain"
)

// keyPrefix namespaces OTP entries by purpose so future flows (password
// recovery, phone confirmation) can share the store without colliding.
const keyPrefix = "user:otp:"

// Key returns the store key for an account's email-verification code.
func Key(email string) string {
	return keyPrefix + email
}

type codeStore interface {
	Issue(ctx context.Context, key string, ttl time.Duration) (string, error)
	Verify(ctx context.Context, key, submitted string) (bool, error)
}

// Notifier delivers a verification code to an address out-of-band.
type Notifier interface {
	Deliver(ctx context.Context, address, code string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetVerified(ctx context.Context, userID string) error
}

// Flow drives an account from unverified to verified: a code is issued and
// delivered on signup, then consumed when the user submits it back.
type Flow struct {
	codes    codeStore
	notifier Notifier
	users    userStore
	ttl      time.Duration
}

func NewFlow(codes codeStore, notifier Notifier, users userStore, ttl time.Duration) *Flow {
	return &Flow{codes: codes, notifier: notifier, users: users, ttl: ttl}
}

// Start issues a code for the account and hands it to the notifier. A code
// already pending is a success no-op — the recipient is not notified again,
// so repeated signup clicks don't spam the inbox. A delivery failure is
// reported but the stored code stays valid; the caller may re-trigger
// delivery once the pending entry expires.
func (f *Flow) Start(ctx context.Context, u *domain.User) error {
	code, err := f.codes.Issue(ctx, Key(u.Email), f.ttl)
	if err != nil {
		if errors.Is(err, domain.ErrOTPAlreadyPending) {
			slog.Info("verification code already pending, skipping delivery", "user_id", u.UserID)
			return nil
		}
		return err
	}
	if err := f.notifier.Deliver(ctx, u.Email, code); err != nil {
		return fmt.Errorf("deliver verification code: %w", err)
	}
	return nil
}

// Complete consumes the submitted code and activates the account. The
// failure message never distinguishes a wrong code from one that was never
// issued, so it leaks no account-existence information.
func (f *Flow) Complete(ctx context.Context, email, submitted string) error {
	ok, err := f.codes.Verify(ctx, Key(email), submitted)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidOrExpiredCode
	}
	u, err := f.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The code store and the account store are populated together;
			// a consumed code without an account means they diverged.
			return fmt.Errorf("no account for verified email: %w", domain.ErrNotFound)
		}
		return err
	}
	return f.users.SetVerified(ctx, u.UserID)
}
