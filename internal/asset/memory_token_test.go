package asset

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

const (
	minter = shared.Address("minter")
	alice  = shared.Address("alice")
	bob    = shared.Address("bob")
)

func TestMintRequiresMinter(t *testing.T) {
	ctx := context.Background()
	tok := NewMemoryToken(minter)

	err := tok.Mint(ctx, alice, alice, big.NewInt(100))
	assert.ErrorIs(t, err, shared.ErrNotAuthority)

	require.NoError(t, tok.Mint(ctx, minter, alice, big.NewInt(100)))
	bal, err := tok.BalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal.Int64())
}

func TestTransferConservesSupply(t *testing.T) {
	ctx := context.Background()
	tok := NewMemoryToken(minter)
	require.NoError(t, tok.Mint(ctx, minter, alice, big.NewInt(500)))

	require.NoError(t, tok.Transfer(ctx, alice, bob, big.NewInt(200)))

	aliceBal, _ := tok.BalanceOf(ctx, alice)
	bobBal, _ := tok.BalanceOf(ctx, bob)
	assert.Equal(t, int64(300), aliceBal.Int64())
	assert.Equal(t, int64(200), bobBal.Int64())
	assert.Equal(t, int64(500), new(big.Int).Add(aliceBal, bobBal).Int64())
}

func TestTransferGuards(t *testing.T) {
	ctx := context.Background()
	tok := NewMemoryToken(minter)
	require.NoError(t, tok.Mint(ctx, minter, alice, big.NewInt(50)))

	err := tok.Transfer(ctx, alice, bob, big.NewInt(51))
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

	err = tok.Transfer(ctx, alice, shared.ZeroAddress, big.NewInt(10))
	assert.ErrorIs(t, err, shared.ErrInvalidRecipient)

	// failed transfers leave balances untouched
	bal, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, int64(50), bal.Int64())
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	ctx := context.Background()
	tok := NewMemoryToken(minter)
	spender := shared.Address("escrow")
	require.NoError(t, tok.Mint(ctx, minter, alice, big.NewInt(100)))

	err := tok.TransferFrom(ctx, spender, alice, bob, big.NewInt(40))
	assert.ErrorIs(t, err, shared.ErrInsufficientAllowance)

	require.NoError(t, tok.Approve(ctx, alice, spender, big.NewInt(60)))
	require.NoError(t, tok.TransferFrom(ctx, spender, alice, bob, big.NewInt(40)))

	// allowance shrinks with use
	err = tok.TransferFrom(ctx, spender, alice, bob, big.NewInt(30))
	assert.ErrorIs(t, err, shared.ErrInsufficientAllowance)

	bobBal, _ := tok.BalanceOf(ctx, bob)
	assert.Equal(t, int64(40), bobBal.Int64())
}

func TestNegativeAmountsRejected(t *testing.T) {
	ctx := context.Background()
	tok := NewMemoryToken(minter)
	spender := shared.Address("escrow")
	require.NoError(t, tok.Mint(ctx, minter, alice, big.NewInt(100)))

	err := tok.Transfer(ctx, alice, bob, big.NewInt(-5))
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)

	err = tok.Mint(ctx, minter, alice, big.NewInt(-5))
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)

	err = tok.Approve(ctx, alice, spender, big.NewInt(-5))
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)

	require.NoError(t, tok.Approve(ctx, alice, spender, big.NewInt(50)))
	err = tok.TransferFrom(ctx, spender, alice, bob, big.NewInt(-5))
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)

	// nothing moved on any rejected path
	aliceBal, _ := tok.BalanceOf(ctx, alice)
	bobBal, _ := tok.BalanceOf(ctx, bob)
	assert.Equal(t, int64(100), aliceBal.Int64())
	assert.Zero(t, bobBal.Sign())
}

func TestBalanceOfReturnsCopies(t *testing.T) {
	ctx := context.Background()
	tok := NewMemoryToken(minter)
	require.NoError(t, tok.Mint(ctx, minter, alice, big.NewInt(10)))

	bal, _ := tok.BalanceOf(ctx, alice)
	bal.SetInt64(999999)

	again, _ := tok.BalanceOf(ctx, alice)
	assert.Equal(t, int64(10), again.Int64())
}

func TestRegistryResolvesTokens(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Token("USDC")
	assert.ErrorIs(t, err, shared.ErrInvalidAsset)

	created := reg.Register("USDC", minter)
	resolved, err := reg.Token("USDC")
	require.NoError(t, err)
	assert.Same(t, Token(created), resolved)

	// double registration returns the same token
	assert.Same(t, created, reg.Register("USDC", alice))
}
