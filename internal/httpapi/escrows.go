package httpapi

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/escrow"
	"github.com/sudo-init-do/agroledger/internal/shared"
)

// CreateEscrow opens an escrow with the caller as buyer. No funds move.
func (h *Handler) CreateEscrow(c echo.Context) error {
	var req struct {
		Seller string `json:"seller"`
		Amount string `json:"amount"`
		Asset  string `json:"asset"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	rec, err := h.Escrows.CreateEscrow(c.Request().Context(), caller(c),
		shared.Address(req.Seller), amount, shared.Address(req.Asset))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, escrowJSON(rec))
}

// GetEscrow returns an escrow record.
func (h *Handler) GetEscrow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid escrow id"})
	}
	rec, err := h.Escrows.GetEscrow(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, escrowJSON(rec))
}

// FundEscrow moves the escrow amount from the buyer into custody.
func (h *Handler) FundEscrow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid escrow id"})
	}
	rec, err := h.Escrows.FundEscrow(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeErr(c, err)
	}
	if h.Notify != nil {
		h.Notify.EscrowFunded(rec.ID, rec.Buyer.String(), rec.Seller.String(), shared.AmountString(rec.Amount))
	}
	return c.JSON(http.StatusOK, escrowJSON(rec))
}

// ConfirmDelivery records the oracle's delivery proof. Authority only.
func (h *Handler) ConfirmDelivery(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid escrow id"})
	}
	var req struct {
		Proof string `json:"proof"`
	}
	if err := c.Bind(&req); err != nil || req.Proof == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid proof"})
	}

	rec, err := h.Escrows.ConfirmDelivery(c.Request().Context(), caller(c), id, req.Proof)
	if err != nil {
		return writeErr(c, err)
	}
	if h.Notify != nil {
		h.Notify.EscrowDelivered(rec.ID, rec.Buyer.String(), rec.Seller.String())
	}
	return c.JSON(http.StatusOK, escrowJSON(rec))
}

// CompleteEscrow releases held funds to the seller.
func (h *Handler) CompleteEscrow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid escrow id"})
	}
	rec, err := h.Escrows.CompleteEscrow(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeErr(c, err)
	}
	if h.Notify != nil {
		h.Notify.EscrowSettled(rec.ID, "completed", rec.Buyer.String(), rec.Seller.String(), shared.AmountString(rec.Amount))
	}
	return c.JSON(http.StatusOK, escrowJSON(rec))
}

// CancelEscrow aborts a non-terminal escrow, refunding the buyer if funded.
func (h *Handler) CancelEscrow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid escrow id"})
	}
	rec, err := h.Escrows.CancelEscrow(c.Request().Context(), caller(c), id)
	if err != nil {
		return writeErr(c, err)
	}
	if h.Notify != nil {
		h.Notify.EscrowSettled(rec.ID, string(escrow.StatusCancelled), rec.Buyer.String(), rec.Seller.String(), shared.AmountString(rec.Amount))
	}
	return c.JSON(http.StatusOK, escrowJSON(rec))
}

// bindAmount reads the common {"amount": "..."} body.
func bindAmount(c echo.Context) (*big.Int, bool) {
	var req struct {
		Amount string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return nil, false
	}
	return shared.ParseAmount(req.Amount)
}
