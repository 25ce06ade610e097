// Package pool tracks per-asset depositor capital: what was supplied, what is
// lent out, and each depositor's share. Every mutating operation keeps the
// books closed — available + borrowed always equals total, and the sum of
// user shares always equals total.
package pool

import (
	"math/big"
	"time"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// MaxRateBps is the exclusive upper bound for pool interest rates.
const MaxRateBps uint32 = 2000

type Pool struct {
	Asset          shared.Address `json:"asset"`
	RateBps        uint32         `json:"interest_rate_bps"`
	Active         bool           `json:"active"`
	TotalLiquidity *big.Int       `json:"total_liquidity"`
	TotalBorrowed  *big.Int       `json:"total_borrowed"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Available is the capital not currently lent out.
func (p *Pool) Available() *big.Int {
	return new(big.Int).Sub(p.TotalLiquidity, p.TotalBorrowed)
}

func (p *Pool) clone() *Pool {
	cp := *p
	cp.TotalLiquidity = shared.CloneAmount(p.TotalLiquidity)
	cp.TotalBorrowed = shared.CloneAmount(p.TotalBorrowed)
	return &cp
}
