package loan

import "context"

// Repository stores loans keyed by an auto-incrementing id.
type Repository interface {
	// Create inserts rec and fills rec.ID with the next id.
	Create(ctx context.Context, rec *Loan) error

	// Get returns the loan by id, ErrNotFound if absent.
	Get(ctx context.Context, id uint64) (*Loan, error)

	// Update overwrites an existing loan record, ErrNotFound if absent.
	Update(ctx context.Context, rec *Loan) error
}
