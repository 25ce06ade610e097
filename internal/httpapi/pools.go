package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/agroledger/internal/shared"
)

// CreatePool opens a liquidity pool for an asset. Authority only.
func (h *Handler) CreatePool(c echo.Context) error {
	var req struct {
		Asset   string `json:"asset"`
		RateBps uint32 `json:"interest_rate_bps"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	rec, err := h.Pools.CreatePool(c.Request().Context(), caller(c), shared.Address(req.Asset), req.RateBps)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, poolJSON(rec))
}

// SetPoolActive flips a pool's active flag. Authority only.
func (h *Handler) SetPoolActive(c echo.Context) error {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	err := h.Pools.SetPoolActive(c.Request().Context(), caller(c), shared.Address(c.Param("asset")), req.Active)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "pool updated"})
}

// SupportedAssets lists pooled assets in creation order.
func (h *Handler) SupportedAssets(c echo.Context) error {
	assets, err := h.Pools.GetSupportedAssets(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	refs := make([]string, len(assets))
	for i, a := range assets {
		refs[i] = a.String()
	}
	return c.JSON(http.StatusOK, echo.Map{"assets": refs})
}

// PoolInfo returns the pool record for an asset.
func (h *Handler) PoolInfo(c echo.Context) error {
	rec, err := h.Pools.GetPoolInfo(c.Request().Context(), shared.Address(c.Param("asset")))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, poolJSON(rec))
}

// UserLiquidity returns a depositor's share of a pool.
func (h *Handler) UserLiquidity(c echo.Context) error {
	amount, err := h.Pools.GetUserLiquidity(c.Request().Context(),
		shared.Address(c.Param("depositor")), shared.Address(c.Param("asset")))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"amount": shared.AmountString(amount)})
}

// AddLiquidity deposits caller funds into a pool.
func (h *Handler) AddLiquidity(c echo.Context) error {
	amount, ok := bindAmount(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	err := h.Pools.AddLiquidity(c.Request().Context(), caller(c), shared.Address(c.Param("asset")), amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "liquidity added"})
}

// RemoveLiquidity withdraws caller funds from a pool.
func (h *Handler) RemoveLiquidity(c echo.Context) error {
	amount, ok := bindAmount(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	err := h.Pools.RemoveLiquidity(c.Request().Context(), caller(c), shared.Address(c.Param("asset")), amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "liquidity removed"})
}

// PoolIssueLoan lends pool capital to a borrower. Authority only.
func (h *Handler) PoolIssueLoan(c echo.Context) error {
	var req struct {
		Borrower string `json:"borrower"`
		Amount   string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil || req.Borrower == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	err := h.Pools.IssueLoan(c.Request().Context(), caller(c), shared.Address(req.Borrower),
		shared.Address(c.Param("asset")), amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "loan issued"})
}

// PoolRepayLoan books returned capital against a pool. Authority only.
func (h *Handler) PoolRepayLoan(c echo.Context) error {
	var req struct {
		Borrower string `json:"borrower"`
		Amount   string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil || req.Borrower == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	amount, ok := shared.ParseAmount(req.Amount)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}

	err := h.Pools.RepayLoan(c.Request().Context(), caller(c), shared.Address(req.Borrower),
		shared.Address(c.Param("asset")), amount)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "repayment recorded"})
}
