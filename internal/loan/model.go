// Package loan is the borrower-facing loan book: creation gated on identity
// verification, fixed simple-interest owed, capped repayments. Loans are a
// historical record and are never deleted.
package loan

import (
	"math/big"
	"time"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// SecondsPerYear is the interest-rate denominator base (365 days).
const SecondsPerYear = 31_536_000

// BpsDenominator converts basis points to a fraction.
const BpsDenominator = 10_000

type Loan struct {
	ID           uint64         `json:"id"`
	Borrower     shared.Address `json:"borrower"`
	Principal    *big.Int       `json:"principal"`
	RateBps      uint32         `json:"interest_rate_bps"`
	Duration     time.Duration  `json:"duration"`
	CreatedAt    time.Time      `json:"created_at"`
	RepaidAmount *big.Int       `json:"repaid_amount"`
	Repaid       bool           `json:"is_repaid"`
	Active       bool           `json:"is_active"`
}

// TotalOwed is principal plus simple interest over the loan's full nominal
// duration: principal * rate_bps * duration_secs / (10_000 * year_secs).
// All intermediates are big integers so principals up to 10^27 stay exact.
func (l *Loan) TotalOwed() *big.Int {
	interest := new(big.Int).Set(l.Principal)
	interest.Mul(interest, big.NewInt(int64(l.RateBps)))
	interest.Mul(interest, big.NewInt(int64(l.Duration/time.Second)))
	interest.Quo(interest, big.NewInt(BpsDenominator*SecondsPerYear))
	return interest.Add(interest, l.Principal)
}

func (l *Loan) clone() *Loan {
	cp := *l
	cp.Principal = shared.CloneAmount(l.Principal)
	cp.RepaidAmount = shared.CloneAmount(l.RepaidAmount)
	return &cp
}
