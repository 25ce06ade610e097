package asset

import (
	"context"
	"math/big"
	"sync"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// MemoryToken is an in-process fungible token: one balance map, one allowance
// map, one privileged minter. It backs tests and single-process deployments
// where no external token contract exists.
type MemoryToken struct {
	mu         sync.RWMutex
	minter     shared.Address
	balances   map[shared.Address]*big.Int
	allowances map[shared.Address]map[shared.Address]*big.Int
}

// NewMemoryToken creates an empty token whose mint privilege belongs to minter.
func NewMemoryToken(minter shared.Address) *MemoryToken {
	return &MemoryToken{
		minter:     minter,
		balances:   make(map[shared.Address]*big.Int),
		allowances: make(map[shared.Address]map[shared.Address]*big.Int),
	}
}

func (t *MemoryToken) BalanceOf(ctx context.Context, addr shared.Address) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return shared.CloneAmount(t.balances[addr]), nil
}

func (t *MemoryToken) Transfer(ctx context.Context, caller, to shared.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(caller, to, amount)
}

// Approve sets the spender's allowance. Approving zero revokes; negative
// allowances are rejected.
func (t *MemoryToken) Approve(ctx context.Context, caller, spender shared.Address, amount *big.Int) error {
	if spender.IsZero() {
		return shared.ErrInvalidRecipient
	}
	if amount != nil && amount.Sign() < 0 {
		return shared.ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	byOwner := t.allowances[caller]
	if byOwner == nil {
		byOwner = make(map[shared.Address]*big.Int)
		t.allowances[caller] = byOwner
	}
	byOwner[spender] = shared.CloneAmount(amount)
	return nil
}

func (t *MemoryToken) TransferFrom(ctx context.Context, caller, from, to shared.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	allowed := t.allowances[from][caller]
	if allowed == nil || allowed.Cmp(amount) < 0 {
		return shared.ErrInsufficientAllowance
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	allowed.Sub(allowed, amount)
	return nil
}

func (t *MemoryToken) Mint(ctx context.Context, caller, to shared.Address, amount *big.Int) error {
	if caller != t.minter {
		return shared.ErrNotAuthority
	}
	if to.IsZero() {
		return shared.ErrInvalidRecipient
	}
	if amount == nil || amount.Sign() < 0 {
		return shared.ErrNegativeAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
	return nil
}

// move debits caller and credits to. Callers hold the write lock. Negative
// amounts are rejected here so no caller path can reverse a debit.
func (t *MemoryToken) move(from, to shared.Address, amount *big.Int) error {
	if to.IsZero() {
		return shared.ErrInvalidRecipient
	}
	if amount == nil || amount.Sign() < 0 {
		return shared.ErrNegativeAmount
	}
	bal := t.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return shared.ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *MemoryToken) credit(to shared.Address, amount *big.Int) {
	if cur := t.balances[to]; cur != nil {
		cur.Add(cur, amount)
		return
	}
	t.balances[to] = shared.CloneAmount(amount)
}

// Registry is an in-process multi-asset source: asset refs mapped to their
// MemoryToken instances.
type Registry struct {
	mu     sync.RWMutex
	tokens map[shared.Address]*MemoryToken
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[shared.Address]*MemoryToken)}
}

// Register creates (or returns) the token behind ref with minter holding the
// mint privilege.
func (r *Registry) Register(ref shared.Address, minter shared.Address) *MemoryToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok, ok := r.tokens[ref]; ok {
		return tok
	}
	tok := NewMemoryToken(minter)
	r.tokens[ref] = tok
	return tok
}

func (r *Registry) Token(ref shared.Address) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.tokens[ref]
	if !ok {
		return nil, shared.ErrInvalidAsset
	}
	return tok, nil
}
