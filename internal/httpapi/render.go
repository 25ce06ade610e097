package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/escrow"
	"github.com/sudo-init-do/agroledger/internal/loan"
	"github.com/sudo-init-do/agroledger/internal/pool"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Amounts go out as decimal strings: base-unit integers overflow JSON
// numbers long before the 10^27 range the ledger supports.

func loanJSON(rec *loan.Loan) echo.Map {
	return echo.Map{
		"id":                rec.ID,
		"borrower":          rec.Borrower.String(),
		"principal":         shared.AmountString(rec.Principal),
		"interest_rate_bps": rec.RateBps,
		"duration_secs":     int64(rec.Duration / time.Second),
		"created_at":        rec.CreatedAt,
		"repaid_amount":     shared.AmountString(rec.RepaidAmount),
		"is_repaid":         rec.Repaid,
		"is_active":         rec.Active,
	}
}

func poolJSON(rec *pool.Pool) echo.Map {
	return echo.Map{
		"asset":               rec.Asset.String(),
		"interest_rate_bps":   rec.RateBps,
		"active":              rec.Active,
		"total_liquidity":     shared.AmountString(rec.TotalLiquidity),
		"total_borrowed":      shared.AmountString(rec.TotalBorrowed),
		"available_liquidity": shared.AmountString(rec.Available()),
		"created_at":          rec.CreatedAt,
	}
}

func escrowJSON(rec *escrow.Escrow) echo.Map {
	out := echo.Map{
		"asset":      rec.Asset.String(),
		"id":         rec.ID,
		"buyer":      rec.Buyer.String(),
		"seller":     rec.Seller.String(),
		"amount":     shared.AmountString(rec.Amount),
		"status":     string(rec.Status),
		"created_at": rec.CreatedAt,
	}
	if rec.DeliveryProof != "" {
		out["delivery_proof"] = rec.DeliveryProof
	}
	if rec.DeliveredAt != nil {
		out["delivered_at"] = rec.DeliveredAt
	}
	return out
}
