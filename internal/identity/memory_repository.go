package identity

import (
	"context"
	"sync"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// MemoryRepository keeps identities in process. Used by tests and embedded
// deployments.
type MemoryRepository struct {
	mu       sync.RWMutex
	byWallet map[shared.Address]*Identity
	byDID    map[string]shared.Address
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byWallet: make(map[shared.Address]*Identity),
		byDID:    make(map[string]shared.Address),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, rec *Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byDID[rec.DID]; ok {
		return shared.ErrDuplicateDid
	}
	if _, ok := r.byWallet[rec.Wallet]; ok {
		return shared.ErrDuplicateWallet
	}
	cp := *rec
	r.byWallet[rec.Wallet] = &cp
	r.byDID[rec.DID] = rec.Wallet
	return nil
}

func (r *MemoryRepository) GetByWallet(ctx context.Context, wallet shared.Address) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byWallet[wallet]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryRepository) UpdateReputation(ctx context.Context, wallet shared.Address, score uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byWallet[wallet]
	if !ok {
		return shared.ErrNotFound
	}
	rec.Reputation = score
	return nil
}
