// Package asset defines the fungible-asset capability the ledger components
// consume, plus an in-process implementation used by tests and the bundled
// server. The capability follows standard token semantics: balances are
// non-negative base-unit integers, transfers conserve total supply, and a
// spender may only pull funds within a prior approval.
package asset

import (
	"context"
	"math/big"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Token is the fungible-asset capability. Every method takes the acting
// address explicitly; there is no ambient caller.
type Token interface {
	// BalanceOf returns the balance of addr (zero for unknown addresses).
	BalanceOf(ctx context.Context, addr shared.Address) (*big.Int, error)

	// Transfer moves amount from the caller to 'to'. Fails with
	// ErrInsufficientBalance or ErrInvalidRecipient.
	Transfer(ctx context.Context, caller, to shared.Address, amount *big.Int) error

	// Approve lets spender pull up to amount from the caller's balance.
	Approve(ctx context.Context, caller, spender shared.Address, amount *big.Int) error

	// TransferFrom moves amount from 'from' to 'to' on the caller's
	// allowance. Fails with ErrInsufficientAllowance, ErrInsufficientBalance
	// or ErrInvalidRecipient.
	TransferFrom(ctx context.Context, caller, from, to shared.Address, amount *big.Int) error

	// Mint creates amount for 'to'. Privileged: only the asset's minter.
	Mint(ctx context.Context, caller, to shared.Address, amount *big.Int) error
}

// Source resolves an asset reference to its token capability. The pool and
// escrow components hold one of these instead of a single token.
type Source interface {
	Token(ref shared.Address) (Token, error)
}
