package security

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialKind distinguishes how a stored credential must be checked.
type CredentialKind int

const (
	// CredentialLegacy is a plaintext value not yet migrated to bcrypt.
	CredentialLegacy CredentialKind = iota
	// CredentialBcrypt is a salted one-way hash produced by bcrypt.
	CredentialBcrypt
)

// bcryptPrefixes identify hashed credentials; everything else in the
// password_hash column is a legacy plaintext value awaiting migration.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Credential is the classified form of a stored password_hash value.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// ClassifyCredential resolves a stored value into its tagged form by prefix.
func ClassifyCredential(stored string) Credential {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return Credential{Kind: CredentialBcrypt, Value: stored}
		}
	}
	return Credential{Kind: CredentialLegacy, Value: stored}
}

// VerifyPassword compares a supplied plaintext password against the stored
// credential. The dual mode supports in-place migration from plaintext to
// bcrypt without a coordinated cutover; it stays until every row is
// confirmed migrated. Fails closed: any comparison error counts as
// non-match.
func VerifyPassword(password, stored string) bool {
	if password == "" || stored == "" {
		return false
	}

	cred := ClassifyCredential(stored)
	switch cred.Kind {
	case CredentialBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(cred.Value), []byte(password)) == nil
	default:
		return subtle.ConstantTimeCompare([]byte(cred.Value), []byte(password)) == 1
	}
}
