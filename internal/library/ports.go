package library

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=library

// Repository defines the contract for book document storage.
type Repository interface {
	// Create stores b and assigns its ID.
	Create(ctx context.Context, b *Book) error
	Get(ctx context.Context, id string) (Book, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Book, error)
	// Update applies p to the stored book and returns the result.
	Update(ctx context.Context, id string, p Patch) (Book, error)
	Delete(ctx context.Context, id string) error
}
