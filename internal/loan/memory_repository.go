package loan

import (
	"context"
	"sync"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	nextID uint64
	loans  map[uint64]*Loan
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, loans: make(map[uint64]*Loan)}
}

func (r *MemoryRepository) Create(ctx context.Context, rec *Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	r.loans[rec.ID] = rec.clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uint64) (*Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.loans[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec.clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, rec *Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[rec.ID]; !ok {
		return shared.ErrNotFound
	}
	r.loans[rec.ID] = rec.clone()
	return nil
}
