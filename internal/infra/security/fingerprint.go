package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLength is the number of hex characters embedded in session
// tokens. Long enough to make collisions irrelevant, short enough to keep
// cookies small.
const fingerprintLength = 16

// PasswordFingerprint derives a short keyed digest of the stored credential.
// It changes whenever the stored value changes, and only then, which is how
// a password change invalidates every previously issued session without a
// revocation list. Returns "" when either input is empty; callers treat an
// absent fingerprint as a validation failure.
func PasswordFingerprint(secret []byte, storedCredential string) string {
	if len(secret) == 0 || storedCredential == "" {
		return ""
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(storedCredential))
	return hex.EncodeToString(mac.Sum(nil))[:fingerprintLength]
}
