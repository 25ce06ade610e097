package loan

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

// Verifier is the slice of the identity registry the loan book depends on.
type Verifier interface {
	IsVerified(ctx context.Context, wallet shared.Address) (bool, error)
}

// Service manages the loan lifecycle over a single fungible asset. The
// custody address holds the manager's lending balance; principal flows out of
// it on creation and repayments flow back into it.
type Service struct {
	mu      sync.RWMutex
	repo    Repository
	ids     Verifier
	token   asset.Token
	custody shared.Address
	audit   audit.Recorder
	log     *slog.Logger
	now     func() time.Time
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }

func NewService(repo Repository, ids Verifier, token asset.Token, custody shared.Address, rec audit.Recorder, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		ids:     ids,
		token:   token,
		custody: custody,
		audit:   rec,
		log:     log,
		now:     time.Now,
	}
}

// CreateLoan records a new active loan for borrower and pays out the
// principal from the manager's custody. The transfer and the record are one
// atomic unit: if the transfer fails no record persists, and if the record
// cannot be written the transfer is reversed.
func (s *Service) CreateLoan(ctx context.Context, borrower shared.Address, principal *big.Int, rateBps uint32, duration time.Duration) (*Loan, error) {
	if err := shared.CheckAmount(principal); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, shared.ErrInvalidDuration
	}
	verified, err := s.ids.IsVerified(ctx, borrower)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, shared.ErrBorrowerNotVerified
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.token.Transfer(ctx, s.custody, borrower, principal); err != nil {
		return nil, err
	}
	rec := &Loan{
		Borrower:     borrower,
		Principal:    shared.CloneAmount(principal),
		RateBps:      rateBps,
		Duration:     duration,
		CreatedAt:    s.now(),
		RepaidAmount: new(big.Int),
		Active:       true,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// unwind the payout so the books stay balanced
		if rbErr := s.token.Transfer(ctx, borrower, s.custody, principal); rbErr != nil {
			s.log.Error("loan payout rollback failed", "borrower", borrower.String(), "err", rbErr)
		}
		return nil, err
	}
	s.audit.Record("loan.created", "loan", formatID(rec.ID), map[string]string{
		"borrower":  borrower.String(),
		"principal": shared.AmountString(principal),
	})
	s.log.Info("loan created", "id", rec.ID, "borrower", borrower.String(),
		"principal", shared.AmountString(principal), "rate_bps", rateBps)
	return rec, nil
}

// CalculateTotalOwed returns principal plus the loan's full nominal interest.
func (s *Service) CalculateTotalOwed(ctx context.Context, id uint64) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.TotalOwed(), nil
}

// RepayLoan pulls amount from the borrower into custody and applies it to the
// loan. Repaying past the total owed is rejected, never truncated. Driving
// repaid_amount to the total owed settles the loan.
func (s *Service) RepayLoan(ctx context.Context, caller shared.Address, id uint64, amount *big.Int) (*Loan, error) {
	if err := shared.CheckAmount(amount); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != rec.Borrower {
		return nil, shared.ErrNotBorrower
	}
	if !rec.Active {
		return nil, shared.ErrLoanInactive
	}
	owed := rec.TotalOwed()
	next := new(big.Int).Add(rec.RepaidAmount, amount)
	if next.Cmp(owed) > 0 {
		return nil, shared.ErrOverRepayment
	}

	if err := s.token.TransferFrom(ctx, s.custody, caller, s.custody, amount); err != nil {
		return nil, err
	}
	rec.RepaidAmount = next
	if next.Cmp(owed) == 0 {
		rec.Repaid = true
		rec.Active = false
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		if rbErr := s.token.Transfer(ctx, s.custody, caller, amount); rbErr != nil {
			s.log.Error("repayment rollback failed", "loan", id, "err", rbErr)
		}
		return nil, err
	}
	fact := "loan.repayment"
	if rec.Repaid {
		fact = "loan.repaid"
	}
	s.audit.Record(fact, "loan", formatID(id), map[string]string{
		"amount": shared.AmountString(amount),
		"repaid": shared.AmountString(rec.RepaidAmount),
	})
	return rec, nil
}

// GetLoan returns the loan record by id.
func (s *Service) GetLoan(ctx context.Context, id uint64) (*Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Get(ctx, id)
}
