package repository

import (
	"context"

	"shipperizer/internal/domain"
)

// AutosaveStore persists the latest graph snapshot
type AutosaveStore interface {
	// Save replaces the autosave with snap. It reports false when snap is
	// identical to what is already stored and nothing was written.
	Save(ctx context.Context, snap domain.Snapshot) (bool, error)

	// Load returns the autosaved snapshot, or nil when none exists
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Clear deletes the autosave
	Clear(ctx context.Context) error

	// Close releases resources
	Close() error
}
