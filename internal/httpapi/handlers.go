// Package httpapi is the application surface over the ledger core: each route
// translates its request into one component operation and maps the ledger
// error kinds onto HTTP statuses without rewriting the codes.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/asset"
	"github.com/sudo-init-do/agroledger/internal/audit"
	"github.com/sudo-init-do/agroledger/internal/escrow"
	"github.com/sudo-init-do/agroledger/internal/identity"
	"github.com/sudo-init-do/agroledger/internal/loan"
	mware "github.com/sudo-init-do/agroledger/internal/middleware"
	"github.com/sudo-init-do/agroledger/internal/pool"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Notifier is the slice of the alerts package the handlers call. All calls
// are best-effort; a nil Notifier disables notifications.
type Notifier interface {
	LoanCreated(loanID uint64, borrower string, principal string)
	EscrowFunded(escrowID uint64, buyer, seller string, amount string)
	EscrowDelivered(escrowID uint64, buyer, seller string)
	EscrowSettled(escrowID uint64, outcome, buyer, seller string, amount string)
}

type Handler struct {
	Identity *identity.Service
	Loans    *loan.Service
	Pools    *pool.Service
	Escrows  *escrow.Service
	Assets   *asset.Registry
	Audit    *audit.Log
	Notify   Notifier
}

// Register wires all ledger routes onto e behind the given auth middleware.
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "agroledger"})
	})

	g := e.Group("", auth)

	// identity registry
	g.POST("/identities", h.CreateIdentity)
	g.GET("/identities/:wallet", h.GetIdentity)
	g.GET("/identities/:wallet/verified", h.IsVerified)
	g.GET("/identities/:wallet/reputation", h.Reputation)
	g.PATCH("/identities/:wallet/reputation", h.UpdateReputation, mware.RequireRoles(mware.RoleAuthority))

	// loan manager
	g.POST("/loans", h.CreateLoan)
	g.GET("/loans/:id", h.GetLoan)
	g.GET("/loans/:id/owed", h.TotalOwed)
	g.POST("/loans/:id/repay", h.RepayLoan)

	// liquidity pools
	g.POST("/pools", h.CreatePool, mware.RequireRoles(mware.RoleAuthority))
	g.PATCH("/pools/:asset/active", h.SetPoolActive, mware.RequireRoles(mware.RoleAuthority))
	g.GET("/pools", h.SupportedAssets)
	g.GET("/pools/:asset", h.PoolInfo)
	g.GET("/pools/:asset/liquidity/:depositor", h.UserLiquidity)
	g.POST("/pools/:asset/deposit", h.AddLiquidity)
	g.POST("/pools/:asset/withdraw", h.RemoveLiquidity)
	g.POST("/pools/:asset/issue", h.PoolIssueLoan, mware.RequireRoles(mware.RoleAuthority))
	g.POST("/pools/:asset/repay", h.PoolRepayLoan, mware.RequireRoles(mware.RoleAuthority))

	// marketplace escrow
	g.POST("/escrows", h.CreateEscrow)
	g.GET("/escrows/:id", h.GetEscrow)
	g.POST("/escrows/:id/fund", h.FundEscrow)
	g.POST("/escrows/:id/deliver", h.ConfirmDelivery, mware.RequireRoles(mware.RoleAuthority))
	g.POST("/escrows/:id/complete", h.CompleteEscrow)
	g.POST("/escrows/:id/cancel", h.CancelEscrow)

	// in-process asset ledger
	g.GET("/assets/:ref/balance", h.AssetBalance)
	g.POST("/assets/:ref/transfer", h.AssetTransfer)
	g.POST("/assets/:ref/approve", h.AssetApprove)
	g.POST("/assets/:ref/mint", h.AssetMint, mware.RequireRoles(mware.RoleAuthority))

	// audit log
	g.GET("/events", h.Events)
}

// caller returns the wallet the auth middleware extracted.
func caller(c echo.Context) shared.Address {
	wallet, _ := c.Get("wallet").(string)
	return shared.Address(wallet)
}

// writeErr maps ledger error kinds onto HTTP statuses, keeping the error code
// as the body so API collaborators see the ledger codes unchanged.
func writeErr(c echo.Context, err error) error {
	var le *shared.Error
	if !errors.As(err, &le) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	status := http.StatusInternalServerError
	switch le.Kind {
	case shared.KindAuthorization:
		status = http.StatusForbidden
	case shared.KindState, shared.KindConflict:
		status = http.StatusConflict
	case shared.KindValidation, shared.KindInsufficiency:
		status = http.StatusBadRequest
	case shared.KindNotFound:
		status = http.StatusNotFound
	}
	return c.JSON(status, echo.Map{"error": le.Code})
}

// Events returns the audit log, oldest first.
func (h *Handler) Events(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"events": h.Audit.Events()})
}
