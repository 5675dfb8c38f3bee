package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Type discriminates access tokens from refresh tokens. The claim is part of
// the signed payload, so a refresh token can never be replayed as an access
// token without breaking the signature.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	TokenType Type `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 JWTs carrying a token-type claim.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue builds and signs a token for the given subject. The token expires
// lifetime after the codec's current time.
func (c *Codec) Issue(subjectID string, tokenType Type, lifetime time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry, checks the token-type claim
// against expected, and returns the subject.
func (c *Codec) Validate(tokenStr string, expected Type) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", domain.ErrTokenMalformed
	}
	if claims.TokenType != expected {
		return "", domain.ErrTokenTypeMismatch
	}
	if claims.Subject == "" {
		return "", domain.ErrTokenMissingSubject
	}
	return claims.Subject, nil
}
