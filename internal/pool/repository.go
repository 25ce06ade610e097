package pool

import (
	"context"
	"math/big"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Repository stores pools keyed by asset and user liquidity keyed by
// (depositor, asset).
type Repository interface {
	// CreatePool inserts rec, ErrPoolExists if the asset already has a pool.
	CreatePool(ctx context.Context, rec *Pool) error

	// GetPool returns the pool for asset, ErrNotFound if absent.
	GetPool(ctx context.Context, asset shared.Address) (*Pool, error)

	// UpdatePool overwrites an existing pool, ErrNotFound if absent.
	UpdatePool(ctx context.Context, rec *Pool) error

	// UserLiquidity returns the depositor's share, zero if none recorded.
	UserLiquidity(ctx context.Context, depositor, asset shared.Address) (*big.Int, error)

	// SetUserLiquidity overwrites the depositor's share.
	SetUserLiquidity(ctx context.Context, depositor, asset shared.Address, amount *big.Int) error

	// Assets lists pooled asset refs in pool-creation order.
	Assets(ctx context.Context) ([]shared.Address, error)
}
