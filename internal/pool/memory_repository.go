package pool

import (
	"context"
	"math/big"
	"sync"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

type liquidityKey struct {
	depositor shared.Address
	asset     shared.Address
}

type MemoryRepository struct {
	mu        sync.RWMutex
	pools     map[shared.Address]*Pool
	order     []shared.Address
	liquidity map[liquidityKey]*big.Int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pools:     make(map[shared.Address]*Pool),
		liquidity: make(map[liquidityKey]*big.Int),
	}
}

func (r *MemoryRepository) CreatePool(ctx context.Context, rec *Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[rec.Asset]; ok {
		return shared.ErrPoolExists
	}
	r.pools[rec.Asset] = rec.clone()
	r.order = append(r.order, rec.Asset)
	return nil
}

func (r *MemoryRepository) GetPool(ctx context.Context, asset shared.Address) (*Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.pools[asset]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec.clone(), nil
}

func (r *MemoryRepository) UpdatePool(ctx context.Context, rec *Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pools[rec.Asset]; !ok {
		return shared.ErrNotFound
	}
	r.pools[rec.Asset] = rec.clone()
	return nil
}

func (r *MemoryRepository) UserLiquidity(ctx context.Context, depositor, asset shared.Address) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return shared.CloneAmount(r.liquidity[liquidityKey{depositor, asset}]), nil
}

func (r *MemoryRepository) SetUserLiquidity(ctx context.Context, depositor, asset shared.Address, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.liquidity[liquidityKey{depositor, asset}] = shared.CloneAmount(amount)
	return nil
}

func (r *MemoryRepository) Assets(ctx context.Context) ([]shared.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]shared.Address, len(r.order))
	copy(out, r.order)
	return out, nil
}
