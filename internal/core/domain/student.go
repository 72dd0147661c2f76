package domain

import "time"

// Student mirrors a row of the allievi table. PasswordHash holds either a
// bcrypt hash or a not-yet-migrated plaintext value (see
// security.ClassifyCredential).
type Student struct {
	ID               string
	Email            string
	Nome             string
	PasswordHash     string
	Attivo           bool
	TheoryExamPassed bool
	LastLogin        *time.Time
	LastVisit        *time.Time
	AvatarURL        *string
}

// Sanitized returns a copy safe to hand outside the auth layer.
func (s Student) Sanitized() Student {
	out := s
	out.PasswordHash = ""
	return out
}
