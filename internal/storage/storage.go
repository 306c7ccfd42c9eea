package storage

import (
	"context"

	"github.com/ondrasimku/info-service-go/internal/domain"
)

// Store persists the info document.
type Store interface {
	// Load returns the stored document, falling back to (and persisting)
	// defaults when the backing data is missing or unusable. The returned
	// document is always usable; a non-nil error means the repaired
	// document could not be persisted.
	Load(ctx context.Context) (domain.Info, error)
	Save(ctx context.Context, info domain.Info) error
}
