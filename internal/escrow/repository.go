package escrow

import "context"

// Repository stores escrows keyed by an auto-incrementing id.
type Repository interface {
	// Create inserts rec and fills rec.ID with the next id.
	Create(ctx context.Context, rec *Escrow) error

	// Get returns the escrow by id, ErrNotFound if absent.
	Get(ctx context.Context, id uint64) (*Escrow, error)

	// Update overwrites an existing escrow, ErrNotFound if absent.
	Update(ctx context.Context, rec *Escrow) error
}
