package pool

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/sudo-init-do/agroledger/internal/asset"
	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Service manages multi-asset liquidity pools. Pool capital is custodied at a
// single address per service; pool creation, loan issuance and pool-level
// repayment bookkeeping are restricted to the authority.
type Service struct {
	mu        sync.RWMutex
	repo      Repository
	tokens    asset.Source
	custody   shared.Address
	authority shared.Address
	audit     audit.Recorder
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, tokens asset.Source, custody, authority shared.Address, rec audit.Recorder, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		custody:   custody,
		authority: authority,
		audit:     rec,
		log:       log,
		now:       time.Now,
	}
}

// CreatePool opens a pool for assetRef at rateBps. Authority only; one pool
// per asset; rate must sit strictly inside (0, 2000) bps.
func (s *Service) CreatePool(ctx context.Context, caller, assetRef shared.Address, rateBps uint32) (*Pool, error) {
	if caller != s.authority {
		return nil, shared.ErrNotAuthority
	}
	if assetRef.IsZero() {
		return nil, shared.ErrInvalidAsset
	}
	if rateBps == 0 || rateBps >= MaxRateBps {
		return nil, shared.ErrInvalidRate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Pool{
		Asset:          assetRef,
		RateBps:        rateBps,
		Active:         true,
		TotalLiquidity: new(big.Int),
		TotalBorrowed:  new(big.Int),
		CreatedAt:      s.now(),
	}
	if err := s.repo.CreatePool(ctx, rec); err != nil {
		return nil, err
	}
	s.audit.Record("pool.created", "pool", assetRef.String(), map[string]string{
		"rate_bps": shared.AmountString(big.NewInt(int64(rateBps))),
	})
	s.log.Info("pool created", "asset", assetRef.String(), "rate_bps", rateBps)
	return rec, nil
}

// SetPoolActive flips the pool's active flag. Authority only. An inactive
// pool refuses new deposits and new borrowing but still pays out withdrawals
// and accepts repayments, so capital can always drain.
func (s *Service) SetPoolActive(ctx context.Context, caller, assetRef shared.Address, active bool) error {
	if caller != s.authority {
		return shared.ErrNotAuthority
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.repo.GetPool(ctx, assetRef)
	if err != nil {
		return err
	}
	rec.Active = active
	if err := s.repo.UpdatePool(ctx, rec); err != nil {
		return err
	}
	s.audit.Record("pool.active_changed", "pool", assetRef.String(), map[string]string{
		"active": boolString(active),
	})
	return nil
}

// AddLiquidity pulls amount from the caller into pool custody and credits the
// caller's share.
func (s *Service) AddLiquidity(ctx context.Context, caller, assetRef shared.Address, amount *big.Int) error {
	if err := shared.CheckAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetPool(ctx, assetRef)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return shared.ErrPoolInactive
		}
		return err
	}
	if !rec.Active {
		return shared.ErrPoolInactive
	}
	tok, err := s.tokens.Token(assetRef)
	if err != nil {
		return err
	}
	share, err := s.repo.UserLiquidity(ctx, caller, assetRef)
	if err != nil {
		return err
	}

	if err := tok.TransferFrom(ctx, s.custody, caller, s.custody, amount); err != nil {
		return err
	}
	prior := rec.clone()
	rec.TotalLiquidity.Add(rec.TotalLiquidity, amount)
	share.Add(share, amount)
	if err := s.writePosition(ctx, tok, prior, rec, caller, share, amount, true); err != nil {
		return err
	}
	s.audit.Record("pool.liquidity_added", "pool", assetRef.String(), map[string]string{
		"depositor": caller.String(),
		"amount":    shared.AmountString(amount),
	})
	return nil
}

// RemoveLiquidity returns amount from pool custody to the caller. The caller
// must own that much share and the pool must have it on hand — capital lent
// out cannot be withdrawn.
func (s *Service) RemoveLiquidity(ctx context.Context, caller, assetRef shared.Address, amount *big.Int) error {
	if err := shared.CheckAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetPool(ctx, assetRef)
	if err != nil {
		return err
	}
	share, err := s.repo.UserLiquidity(ctx, caller, assetRef)
	if err != nil {
		return err
	}
	if amount.Cmp(share) > 0 {
		return shared.ErrInsufficientUserLiquidity
	}
	if amount.Cmp(rec.Available()) > 0 {
		return shared.ErrInsufficientPoolLiquidity
	}
	tok, err := s.tokens.Token(assetRef)
	if err != nil {
		return err
	}

	if err := tok.Transfer(ctx, s.custody, caller, amount); err != nil {
		return err
	}
	prior := rec.clone()
	rec.TotalLiquidity.Sub(rec.TotalLiquidity, amount)
	share.Sub(share, amount)
	if err := s.writePosition(ctx, tok, prior, rec, caller, share, amount, false); err != nil {
		return err
	}
	s.audit.Record("pool.liquidity_removed", "pool", assetRef.String(), map[string]string{
		"depositor": caller.String(),
		"amount":    shared.AmountString(amount),
	})
	return nil
}

// IssueLoan lends amount of pool capital to borrower. Authority only; the
// pool must be active and hold enough un-lent capital.
func (s *Service) IssueLoan(ctx context.Context, caller, borrower, assetRef shared.Address, amount *big.Int) error {
	if caller != s.authority {
		return shared.ErrNotAuthority
	}
	if err := shared.CheckAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetPool(ctx, assetRef)
	if err != nil {
		return err
	}
	if !rec.Active {
		return shared.ErrPoolInactive
	}
	if amount.Cmp(rec.Available()) > 0 {
		return shared.ErrInsufficientLiquidity
	}
	tok, err := s.tokens.Token(assetRef)
	if err != nil {
		return err
	}

	if err := tok.Transfer(ctx, s.custody, borrower, amount); err != nil {
		return err
	}
	rec.TotalBorrowed.Add(rec.TotalBorrowed, amount)
	if err := s.repo.UpdatePool(ctx, rec); err != nil {
		if rbErr := tok.Transfer(ctx, borrower, s.custody, amount); rbErr != nil {
			s.log.Error("pool issue rollback failed", "asset", assetRef.String(), "err", rbErr)
		}
		return err
	}
	s.audit.Record("pool.loan_issued", "pool", assetRef.String(), map[string]string{
		"borrower": borrower.String(),
		"amount":   shared.AmountString(amount),
	})
	return nil
}

// RepayLoan records that amount of lent capital has been returned to pool
// custody. Authority only. Repaying more than is outstanding is rejected
// rather than clamped.
func (s *Service) RepayLoan(ctx context.Context, caller, borrower, assetRef shared.Address, amount *big.Int) error {
	if caller != s.authority {
		return shared.ErrNotAuthority
	}
	if err := shared.CheckAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.GetPool(ctx, assetRef)
	if err != nil {
		return err
	}
	if amount.Cmp(rec.TotalBorrowed) > 0 {
		return shared.ErrOverRepayment
	}
	tok, err := s.tokens.Token(assetRef)
	if err != nil {
		return err
	}

	if err := tok.TransferFrom(ctx, s.custody, borrower, s.custody, amount); err != nil {
		return err
	}
	rec.TotalBorrowed.Sub(rec.TotalBorrowed, amount)
	if err := s.repo.UpdatePool(ctx, rec); err != nil {
		if rbErr := tok.Transfer(ctx, s.custody, borrower, amount); rbErr != nil {
			s.log.Error("pool repay rollback failed", "asset", assetRef.String(), "err", rbErr)
		}
		return err
	}
	s.audit.Record("pool.loan_repaid", "pool", assetRef.String(), map[string]string{
		"borrower": borrower.String(),
		"amount":   shared.AmountString(amount),
	})
	return nil
}

// GetPoolInfo returns the pool record for assetRef.
func (s *Service) GetPoolInfo(ctx context.Context, assetRef shared.Address) (*Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.GetPool(ctx, assetRef)
}

// GetUserLiquidity returns the depositor's share in assetRef's pool.
func (s *Service) GetUserLiquidity(ctx context.Context, depositor, assetRef shared.Address) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.UserLiquidity(ctx, depositor, assetRef)
}

// GetSupportedAssets lists pooled assets in creation order.
func (s *Service) GetSupportedAssets(ctx context.Context) ([]shared.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Assets(ctx)
}

// writePosition persists a deposit or withdrawal (pool totals plus the user
// share). If either write fails the earlier write and the token movement are
// both reversed so no partial position survives.
func (s *Service) writePosition(ctx context.Context, tok asset.Token, prior, rec *Pool, depositor shared.Address, share, moved *big.Int, inbound bool) error {
	err := s.repo.UpdatePool(ctx, rec)
	if err == nil {
		if err = s.repo.SetUserLiquidity(ctx, depositor, rec.Asset, share); err != nil {
			if rbErr := s.repo.UpdatePool(ctx, prior); rbErr != nil {
				s.log.Error("pool totals rollback failed", "asset", rec.Asset.String(), "err", rbErr)
			}
		}
	}
	if err == nil {
		return nil
	}
	var rbErr error
	if inbound {
		rbErr = tok.Transfer(ctx, s.custody, depositor, moved)
	} else {
		rbErr = tok.Transfer(ctx, depositor, s.custody, moved)
	}
	if rbErr != nil {
		s.log.Error("pool position rollback failed", "asset", rec.Asset.String(), "err", rbErr)
	}
	return err
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
