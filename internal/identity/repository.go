package identity

import (
	"context"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Repository stores identities keyed by wallet with a unique secondary index
// by DID.
type Repository interface {
	// Create inserts rec. Fails with ErrDuplicateWallet or ErrDuplicateDid.
	Create(ctx context.Context, rec *Identity) error

	// GetByWallet returns the identity for wallet, ErrNotFound if absent.
	GetByWallet(ctx context.Context, wallet shared.Address) (*Identity, error)

	// UpdateReputation overwrites the score for wallet, ErrNotFound if absent.
	UpdateReputation(ctx context.Context, wallet shared.Address, score uint32) error
}
