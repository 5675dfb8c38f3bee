package token

import (
	"errors"
	"testing"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a controllable time source.
func fixedClock(t time.Time) (func() time.Time, func(time.Duration)) {
	current := t
	now := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return now, advance
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	now, _ := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c := NewCodec("test-secret", WithClock(now))

	tok, err := c.Issue("user-1", TypeAccess, time.Hour)
	require.NoError(t, err)

	sub, err := c.Validate(tok, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestValidate_Expired(t *testing.T) {
	now, advance := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c := NewCodec("test-secret", WithClock(now))

	tok, err := c.Issue("user-1", TypeAccess, time.Hour)
	require.NoError(t, err)

	advance(2 * time.Hour)
	_, err = c.Validate(tok, TypeAccess)
	assert.True(t, errors.Is(err, domain.ErrTokenExpired))
}

func TestValidate_TypeMismatch(t *testing.T) {
	c := NewCodec("test-secret")

	refresh, err := c.Issue("user-1", TypeRefresh, time.Hour)
	require.NoError(t, err)
	_, err = c.Validate(refresh, TypeAccess)
	assert.True(t, errors.Is(err, domain.ErrTokenTypeMismatch))

	access, err := c.Issue("user-1", TypeAccess, time.Hour)
	require.NoError(t, err)
	_, err = c.Validate(access, TypeRefresh)
	assert.True(t, errors.Is(err, domain.ErrTokenTypeMismatch))
}

func TestValidate_MissingSubject(t *testing.T) {
	c := NewCodec("test-secret")

	tok, err := c.Issue("", TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = c.Validate(tok, TypeAccess)
	assert.True(t, errors.Is(err, domain.ErrTokenMissingSubject))
}

func TestValidate_Malformed(t *testing.T) {
	c := NewCodec("test-secret")

	_, err := c.Validate("not-a-real-token", TypeAccess)
	assert.True(t, errors.Is(err, domain.ErrTokenMalformed))
}

func TestValidate_WrongSecret(t *testing.T) {
	signer := NewCodec("secret-a")
	verifier := NewCodec("secret-b")

	tok, err := signer.Issue("user-1", TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(tok, TypeAccess)
	assert.True(t, errors.Is(err, domain.ErrTokenMalformed))
}
