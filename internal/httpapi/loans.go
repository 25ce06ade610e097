package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// CreateLoan opens a loan for the caller and pays out the principal.
func (h *Handler) CreateLoan(c echo.Context) error {
	var req struct {
		Principal    string `json:"principal"`
		RateBps      uint32 `json:"interest_rate_bps"`
		DurationSecs int64  `json:"duration_secs"`
	}
	if err := c.Bind(&req); err != nil || req.DurationSecs <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	principal, ok := shared.ParseAmount(req.Principal)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid principal"})
	}

	rec, err := h.Loans.CreateLoan(c.Request().Context(), caller(c), principal,
		req.RateBps, time.Duration(req.DurationSecs)*time.Second)
	if err != nil {
		return writeErr(c, err)
	}
	if h.Notify != nil {
		h.Notify.LoanCreated(rec.ID, rec.Borrower.String(), shared.AmountString(rec.Principal))
	}
	return c.JSON(http.StatusCreated, loanJSON(rec))
}

// GetLoan returns a loan record.
func (h *Handler) GetLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loan id"})
	}
	rec, err := h.Loans.GetLoan(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, loanJSON(rec))
}

// TotalOwed returns principal plus full nominal interest.
func (h *Handler) TotalOwed(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loan id"})
	}
	owed, err := h.Loans.CalculateTotalOwed(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total_owed": shared.AmountString(owed)})
}

// RepayLoan applies a repayment from the caller.
func (h *Handler) RepayLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loan id"})
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	rec, err := h.Loans.RepayLoan(c.Request().Context(), caller(c), id, amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, loanJSON(rec))
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
