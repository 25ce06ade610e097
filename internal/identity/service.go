package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Service is the identity registry. Reputation writes are restricted to the
// configured authority; reads never fail for unknown wallets.
type Service struct {
	repo      Repository
	authority shared.Address
	audit     audit.Recorder
	log       *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, authority shared.Address, rec audit.Recorder, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		authority: authority,
		audit:     rec,
		log:       log,
		now:       time.Now,
	}
}

// CreateIdentity registers did for wallet. Both must be unused. The record
// starts verified with the initial reputation score.
func (s *Service) CreateIdentity(ctx context.Context, did string, wallet shared.Address) (*Identity, error) {
	if wallet.IsZero() {
		return nil, shared.ErrInvalidRecipient
	}
	rec := &Identity{
		DID:        did,
		Wallet:     wallet,
		Reputation: InitialReputation,
		Verified:   true,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.audit.Record("identity.created", "identity", wallet.String(), map[string]string{"did": did})
	s.log.Info("identity created", "wallet", wallet.String(), "did", did)
	return rec, nil
}

// UpdateReputation overwrites the score for wallet. Authority only.
func (s *Service) UpdateReputation(ctx context.Context, caller, wallet shared.Address, score uint32) error {
	if caller != s.authority {
		return shared.ErrNotAuthority
	}
	if score > MaxReputation {
		return shared.ErrInvalidScore
	}
	if err := s.repo.UpdateReputation(ctx, wallet, score); err != nil {
		return err
	}
	s.audit.Record("identity.reputation_updated", "identity", wallet.String(), nil)
	return nil
}

// IsVerified reports whether wallet has a verified identity. Unknown wallets
// are simply unverified.
func (s *Service) IsVerified(ctx context.Context, wallet shared.Address) (bool, error) {
	rec, err := s.repo.GetByWallet(ctx, wallet)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return rec.Verified, nil
}

// ReputationOf returns the score for wallet, zero for unknown wallets.
func (s *Service) ReputationOf(ctx context.Context, wallet shared.Address) (uint32, error) {
	rec, err := s.repo.GetByWallet(ctx, wallet)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return 0, nil
		}
		return 0, err
	}
	return rec.Reputation, nil
}

// Get returns the full identity record for wallet.
func (s *Service) Get(ctx context.Context, wallet shared.Address) (*Identity, error) {
	return s.repo.GetByWallet(ctx, wallet)
}
