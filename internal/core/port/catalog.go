package port

import (
	"context"

	"github.com/autoscuolaaba/archivio-live-lezioni/internal/core/domain"
)

// CatalogProvider serves the cached video archive.
type CatalogProvider interface {
	Catalog(ctx context.Context) (*domain.Catalog, error)
}

// LiveStatusProvider reports whether the channel is currently streaming.
// Implementations degrade to "not live" on collaborator failure.
type LiveStatusProvider interface {
	LiveStatus(ctx context.Context) domain.LiveStatus
}
