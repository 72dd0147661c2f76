package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/port"
)

var (
	// ErrMissingSecret indicates the signing secret is absent; a deploy-time
	// defect the codec refuses to run without.
	ErrMissingSecret = errors.New("session signing secret is not configured")
	// ErrInvalidToken indicates signature or structural validation failed.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken indicates the token is past its expiry.
	ErrExpiredToken = errors.New("session token expired")
)

// SessionCodec creates and verifies the signed session tokens held by
// clients as the aba-session cookie. It performs no store access;
// freshness re-validation against the live row belongs to the gateway.
type SessionCodec struct {
	secret   []byte
	duration time.Duration
	now      port.Clock
}

// NewSessionCodec builds the codec. An empty secret is a configuration
// error: the process must not issue or verify tokens without one.
func NewSessionCodec(secret string, duration time.Duration, clock port.Clock) (*SessionCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if duration <= 0 {
		duration = 14 * 24 * time.Hour
	}
	if clock == nil {
		clock = port.SystemClock()
	}

	return &SessionCodec{
		secret:   []byte(secret),
		duration: duration,
		now:      clock,
	}, nil
}

// Fingerprint derives the password fingerprint for the given stored
// credential using the codec's signing secret as the HMAC key.
func (c *SessionCodec) Fingerprint(storedCredential string) string {
	return PasswordFingerprint(c.secret, storedCredential)
}

// CreateToken mints a signed session token for the student, binding it to
// the current version of the stored credential.
func (c *SessionCodec) CreateToken(student domain.Student) (string, error) {
	now := c.now().UTC()

	claims := domain.SessionClaims{
		Authorized:          true,
		Email:               student.Email,
		UserID:              student.ID,
		Nome:                student.Nome,
		PasswordFingerprint: c.Fingerprint(student.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// VerifyToken checks signature and expiry and returns the decoded claims.
func (c *SessionCodec) VerifyToken(raw string) (*domain.SessionClaims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &domain.SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
