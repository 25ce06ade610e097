package escrow

import (
	"context"
	"sync"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  uint64
	escrows map[uint64]*Escrow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, escrows: make(map[uint64]*Escrow)}
}

func (r *MemoryRepository) Create(ctx context.Context, rec *Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	r.escrows[rec.ID] = rec.clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uint64) (*Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.escrows[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec.clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, rec *Escrow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.escrows[rec.ID]; !ok {
		return shared.ErrNotFound
	}
	r.escrows[rec.ID] = rec.clone()
	return nil
}
