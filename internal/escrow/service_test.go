package escrow

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/agroledger/internal/asset"
	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

const (
	authority = shared.Address("authority")
	custody   = shared.Address("escrow")
	usdc      = shared.Address("USDC")
	buyer     = shared.Address("buyer")
	seller    = shared.Address("seller")
)

type fixture struct {
	svc   *Service
	token *asset.MemoryToken
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := asset.NewRegistry()
	token := reg.Register(usdc, authority)
	require.NoError(t, token.Mint(ctx, authority, buyer, big.NewInt(1000)))
	require.NoError(t, token.Approve(ctx, buyer, custody, big.NewInt(1000)))

	svc := NewService(NewMemoryRepository(), reg, custody, authority, audit.NewLog(), logger)
	return &fixture{svc: svc, token: token}
}

func (f *fixture) balance(t *testing.T, addr shared.Address) int64 {
	t.Helper()
	bal, err := f.token.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	return bal.Int64()
}

func TestEscrowHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(250), usdc)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, rec.Status)

	// completion before delivery is a state error at every stage
	_, err = f.svc.CompleteEscrow(ctx, seller, rec.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	rec, err = f.svc.FundEscrow(ctx, buyer, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFunded, rec.Status)
	assert.Equal(t, int64(750), f.balance(t, buyer))
	assert.Equal(t, int64(250), f.balance(t, custody))

	rec, err = f.svc.ConfirmDelivery(ctx, authority, rec.ID, "signed-waybill-77")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, rec.Status)
	require.NotNil(t, rec.DeliveredAt)

	rec, err = f.svc.CompleteEscrow(ctx, seller, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, int64(250), f.balance(t, seller))
	assert.Equal(t, int64(0), f.balance(t, custody))

	// the payout happens exactly once
	_, err = f.svc.CompleteEscrow(ctx, seller, rec.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, int64(250), f.balance(t, seller))
}

func TestCancelRefundsFundedEscrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(250), usdc)
	require.NoError(t, err)
	_, err = f.svc.FundEscrow(ctx, buyer, rec.ID)
	require.NoError(t, err)

	rec, err = f.svc.CancelEscrow(ctx, seller, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, rec.Status)
	assert.Equal(t, int64(1000), f.balance(t, buyer))
	assert.Equal(t, int64(0), f.balance(t, custody))

	// a cancelled escrow cannot be revived
	_, err = f.svc.FundEscrow(ctx, buyer, rec.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = f.svc.CancelEscrow(ctx, buyer, rec.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyTerminal)
}

func TestCancelUnfundedEscrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(250), usdc)
	require.NoError(t, err)

	_, err = f.svc.CancelEscrow(ctx, "stranger", rec.ID)
	assert.ErrorIs(t, err, shared.ErrNotAuthority)

	rec, err = f.svc.CancelEscrow(ctx, buyer, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, rec.Status)
	assert.Equal(t, int64(1000), f.balance(t, buyer))
}

func TestCancelAfterDeliveryRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(250), usdc)
	require.NoError(t, err)
	_, err = f.svc.FundEscrow(ctx, buyer, rec.ID)
	require.NoError(t, err)
	_, err = f.svc.ConfirmDelivery(ctx, authority, rec.ID, "proof")
	require.NoError(t, err)

	for _, caller := range []shared.Address{buyer, seller, authority} {
		_, err = f.svc.CancelEscrow(ctx, caller, rec.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	}
}

func TestRoleGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(250), usdc)
	require.NoError(t, err)

	_, err = f.svc.FundEscrow(ctx, seller, rec.ID)
	assert.ErrorIs(t, err, shared.ErrNotBuyer)

	_, err = f.svc.FundEscrow(ctx, buyer, rec.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmDelivery(ctx, buyer, rec.ID, "proof")
	assert.ErrorIs(t, err, shared.ErrNotAuthority)

	_, err = f.svc.ConfirmDelivery(ctx, authority, rec.ID, "proof")
	require.NoError(t, err)

	_, err = f.svc.CompleteEscrow(ctx, buyer, rec.ID)
	assert.ErrorIs(t, err, shared.ErrNotSeller)
}

func TestCreateEscrowValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(0), usdc)
	assert.ErrorIs(t, err, shared.ErrZeroAmount)

	_, err = f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(-250), usdc)
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)

	_, err = f.svc.CreateEscrow(ctx, buyer, shared.ZeroAddress, big.NewInt(10), usdc)
	assert.ErrorIs(t, err, shared.ErrInvalidRecipient)

	_, err = f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(10), shared.ZeroAddress)
	assert.ErrorIs(t, err, shared.ErrInvalidAsset)

	_, err = f.svc.GetEscrow(ctx, 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(250), usdc)
	require.NoError(t, err)

	first, err := f.svc.GetEscrow(ctx, rec.ID)
	require.NoError(t, err)
	first.Amount.SetInt64(1)
	first.Status = StatusCompleted

	second, err := f.svc.GetEscrow(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), second.Amount.Int64())
	assert.Equal(t, StatusCreated, second.Status)
}

func TestFundWithoutAllowance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.CreateEscrow(ctx, buyer, seller, big.NewInt(2000), usdc)
	require.NoError(t, err)

	// allowance covers 1000 only; the escrow stays fundable
	_, err = f.svc.FundEscrow(ctx, buyer, rec.ID)
	assert.ErrorIs(t, err, shared.ErrInsufficientAllowance)

	got, err := f.svc.GetEscrow(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, got.Status)
}
