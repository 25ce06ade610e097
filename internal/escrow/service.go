package escrow

import (
	"context"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/sudo-init-do/agroledger/internal/asset"
	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Service runs the escrow state machine:
// created → funded → delivered → completed, with cancellation possible from
// created or funded only. Delivery confirmation belongs to the authority (a
// trusted oracle), never to either trading party.
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

// CreateEscrow opens an escrow between the caller (buyer) and seller. No
// funds move yet.
func (s *Service) CreateEscrow(ctx context.Context, caller, seller shared.Address, amount *big.Int, assetRef shared.Address) (*Escrow, error) {
	if err := shared.CheckAmount(amount); err != nil {
		return nil, err
	}
	if seller.IsZero() {
		return nil, shared.ErrInvalidRecipient
	}
	if assetRef.IsZero() {
		return nil, shared.ErrInvalidAsset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &Escrow{
		Buyer:     caller,
		Seller:    seller,
		Amount:    shared.CloneAmount(amount),
		Asset:     assetRef,
		Status:    StatusCreated,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.audit.Record("escrow.created", "escrow", formatID(rec.ID), map[string]string{
		"buyer":  caller.String(),
		"seller": seller.String(),
		"amount": shared.AmountString(amount),
	})
	return rec, nil
}

// FundEscrow pulls the escrow amount from the buyer into custody.
func (s *Service) FundEscrow(ctx context.Context, caller shared.Address, id uint64) (*Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != rec.Buyer {
		return nil, shared.ErrNotBuyer
	}
	if rec.Status != StatusCreated {
		return nil, shared.ErrInvalidState
	}
	tok, err := s.tokens.Token(rec.Asset)
	if err != nil {
		return nil, err
	}

	if err := tok.TransferFrom(ctx, s.custody, rec.Buyer, s.custody, rec.Amount); err != nil {
		return nil, err
	}
	rec.Status = StatusFunded
	if err := s.repo.Update(ctx, rec); err != nil {
		if rbErr := tok.Transfer(ctx, s.custody, rec.Buyer, rec.Amount); rbErr != nil {
			s.log.Error("escrow funding rollback failed", "escrow", id, "err", rbErr)
		}
		return nil, err
	}
	s.audit.Record("escrow.funded", "escrow", formatID(id), map[string]string{
		"amount": shared.AmountString(rec.Amount),
	})
	return rec, nil
}

// ConfirmDelivery records the oracle's delivery attestation. Authority only.
func (s *Service) ConfirmDelivery(ctx context.Context, caller shared.Address, id uint64, proof string) (*Escrow, error) {
	if caller != s.authority {
		return nil, shared.ErrNotAuthority
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusFunded {
		return nil, shared.ErrInvalidState
	}
	at := s.now()
	rec.Status = StatusDelivered
	rec.DeliveryProof = proof
	rec.DeliveredAt = &at
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.audit.Record("escrow.delivered", "escrow", formatID(id), map[string]string{
		"proof": proof,
	})
	return rec, nil
}

// CompleteEscrow releases the held amount to the seller. Seller only, after
// delivery has been attested.
func (s *Service) CompleteEscrow(ctx context.Context, caller shared.Address, id uint64) (*Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != rec.Seller {
		return nil, shared.ErrNotSeller
	}
	if rec.Status != StatusDelivered {
		return nil, shared.ErrInvalidState
	}
	tok, err := s.tokens.Token(rec.Asset)
	if err != nil {
		return nil, err
	}

	if err := tok.Transfer(ctx, s.custody, rec.Seller, rec.Amount); err != nil {
		return nil, err
	}
	rec.Status = StatusCompleted
	if err := s.repo.Update(ctx, rec); err != nil {
		if rbErr := tok.Transfer(ctx, rec.Seller, s.custody, rec.Amount); rbErr != nil {
			s.log.Error("escrow release rollback failed", "escrow", id, "err", rbErr)
		}
		return nil, err
	}
	s.audit.Record("escrow.completed", "escrow", formatID(id), map[string]string{
		"seller": rec.Seller.String(),
		"amount": shared.AmountString(rec.Amount),
	})
	return rec, nil
}

// CancelEscrow aborts a non-terminal escrow. Buyer, seller or authority may
// cancel; the cancellation path exists only before delivery, and a funded
// escrow refunds the buyer first.
func (s *Service) CancelEscrow(ctx context.Context, caller shared.Address, id uint64) (*Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != rec.Buyer && caller != rec.Seller && caller != s.authority {
		return nil, shared.ErrNotAuthority
	}
	if rec.Status.Terminal() {
		return nil, shared.ErrAlreadyTerminal
	}
	if rec.Status == StatusDelivered {
		return nil, shared.ErrInvalidState
	}

	refunded := rec.Status == StatusFunded
	if refunded {
		tok, err := s.tokens.Token(rec.Asset)
		if err != nil {
			return nil, err
		}
		if err := tok.Transfer(ctx, s.custody, rec.Buyer, rec.Amount); err != nil {
			return nil, err
		}
		rec.Status = StatusCancelled
		if err := s.repo.Update(ctx, rec); err != nil {
			if rbErr := tok.Transfer(ctx, rec.Buyer, s.custody, rec.Amount); rbErr != nil {
				s.log.Error("escrow refund rollback failed", "escrow", id, "err", rbErr)
			}
			return nil, err
		}
	} else {
		rec.Status = StatusCancelled
		if err := s.repo.Update(ctx, rec); err != nil {
			return nil, err
		}
	}
	s.audit.Record("escrow.cancelled", "escrow", formatID(id), map[string]string{
		"refunded": strconv.FormatBool(refunded),
	})
	return rec, nil
}

// GetEscrow returns the escrow record by id.
func (s *Service) GetEscrow(ctx context.Context, id uint64) (*Escrow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Get(ctx, id)
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
