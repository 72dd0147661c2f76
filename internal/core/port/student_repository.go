package port

import (
	"context"
	"time"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

// StudentRepository exposes the allievi table to the use cases.
type StudentRepository interface {
	// GetByEmail looks up a student by case-normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateLastVisit(ctx context.Context, id string, at time.Time) error
	// UpdateAvatarURL persists the new avatar location; nil clears it.
	UpdateAvatarURL(ctx context.Context, id string, url *string) error
}
