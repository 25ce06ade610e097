package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// Routes over the in-process asset ledger. Deployments backed by an external
// token contract run without these.

// AssetBalance returns the caller's balance, or an explicit wallet's via
// ?wallet=.
func (h *Handler) AssetBalance(c echo.Context) error {
	tok, err := h.Assets.Token(shared.Address(c.Param("ref")))
	if err != nil {
		return writeErr(c, err)
	}
	wallet := caller(c)
	if q := c.QueryParam("wallet"); q != "" {
		wallet = shared.Address(q)
	}
	bal, err := tok.BalanceOf(c.Request().Context(), wallet)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"wallet":  wallet.String(),
		"balance": shared.AmountString(bal),
	})
}

// AssetTransfer moves caller funds to another wallet.
func (h *Handler) AssetTransfer(c echo.Context) error {
	tok, err := h.Assets.Token(shared.Address(c.Param("ref")))
	if err != nil {
		return writeErr(c, err)
	}
	var req struct {
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	if err := tok.Transfer(c.Request().Context(), caller(c), shared.Address(req.To), amount); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "transferred"})
}

// AssetApprove grants a spender an allowance over caller funds. Components
// pull deposits and repayments through these allowances.
func (h *Handler) AssetApprove(c echo.Context) error {
	tok, err := h.Assets.Token(shared.Address(c.Param("ref")))
	if err != nil {
		return writeErr(c, err)
	}
	var req struct {
		Spender string `json:"spender"`
		Amount  string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	if err := tok.Approve(c.Request().Context(), caller(c), shared.Address(req.Spender), amount); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "approved"})
}

// AssetMint creates new units. Authority only.
func (h *Handler) AssetMint(c echo.Context) error {
	tok, err := h.Assets.Token(shared.Address(c.Param("ref")))
	if err != nil {
		return writeErr(c, err)
	}
	var req struct {
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	if err := tok.Mint(c.Request().Context(), caller(c), shared.Address(req.To), amount); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "minted"})
}
