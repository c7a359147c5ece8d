//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

package book

import (
	"context"
)

// Repository defines the contract for book data storage. Identifiers
// passed in are already in the canonical form of the backend's IDCodec.
type Repository interface {
	Find(ctx context.Context, p Predicate) ([]Book, error)
	// FindByID returns ErrNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (Book, error)
	// Insert stores b under a newly assigned identifier and returns it.
	Insert(ctx context.Context, b Book) (string, error)
	// Upsert replaces every mutable field of the record with the id, or
	// inserts it when absent.
	Upsert(ctx context.Context, id string, b Book) error
	// Delete returns the number of records removed.
	Delete(ctx context.Context, id string) (int64, error)
}
