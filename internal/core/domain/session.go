package domain

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload carried by the aba-session cookie.
// PasswordFingerprint binds the token to the credential version it was
// issued against; the gateway recomputes it from the live row on every
// protected request.
type SessionClaims struct {
	Authorized          bool   `json:"authorized"`
	Email               string `json:"email"`
	UserID              string `json:"userId"`
	Nome                string `json:"nome"`
	PasswordFingerprint string `json:"pfp,omitempty"`
	jwt.RegisteredClaims
}

// Complete reports whether the token carries the claims the gateway
// requires. Tokens minted by earlier portal versions lack email and nome
// and must be rejected.
func (c SessionClaims) Complete() bool {
	return c.Authorized && c.Email != "" && c.Nome != ""
}
