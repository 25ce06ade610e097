package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// CreateIdentity registers the caller's wallet under the supplied DID.
func (h *Handler) CreateIdentity(c echo.Context) error {
	var req struct {
		DID string `json:"did"`
	}
	if err := c.Bind(&req); err != nil || req.DID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid did"})
	}

	rec, err := h.Identity.CreateIdentity(c.Request().Context(), req.DID, caller(c))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// GetIdentity returns the identity record for a wallet.
func (h *Handler) GetIdentity(c echo.Context) error {
	rec, err := h.Identity.Get(c.Request().Context(), shared.Address(c.Param("wallet")))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// IsVerified reports verification for a wallet; unknown wallets read false.
func (h *Handler) IsVerified(c echo.Context) error {
	ok, err := h.Identity.IsVerified(c.Request().Context(), shared.Address(c.Param("wallet")))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": ok})
}

// Reputation returns the score for a wallet; unknown wallets read zero.
func (h *Handler) Reputation(c echo.Context) error {
	score, err := h.Identity.ReputationOf(c.Request().Context(), shared.Address(c.Param("wallet")))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reputation_score": score})
}

// UpdateReputation overwrites a wallet's score. Authority only.
func (h *Handler) UpdateReputation(c echo.Context) error {
	var req struct {
		Score uint32 `json:"score"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	err := h.Identity.UpdateReputation(c.Request().Context(), caller(c), shared.Address(c.Param("wallet")), req.Score)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reputation updated"})
}
