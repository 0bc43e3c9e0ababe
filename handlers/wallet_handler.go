package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) WalletBalance(c echo.Context) error {
	wallet, err := h.wallet.Balance(c.Request().Context())
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"wallet": wallet,
		"total":  wallet.Total(),
	})
}

// TopUp adds funds through a gateway checkout, blocking until the flow
// settles or fails.
func (h *Handler) TopUp(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	snap, err := h.wallet.TopUp(c.Request().Context(), req.Amount)
	if err != nil {
		if httpErr, ok := h.httpError(c, err).(*echo.HTTPError); ok {
			return c.JSON(httpErr.Code, map[string]any{
				"error": httpErr.Message,
				"flow":  snap,
			})
		}
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"flow": snap})
}

func (h *Handler) Withdraw(c echo.Context) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	wallet, err := h.wallet.Withdraw(c.Request().Context(), req.Amount)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"wallet": wallet})
}

func (h *Handler) Transactions(c echo.Context) error {
	page, _ := intQuery(c, "page", 1)
	limit, _ := intQuery(c, "limit", 20)
	resp, err := h.wallet.Transactions(c.Request().Context(), page, limit)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ActiveBids(c echo.Context) error {
	bids, err := h.wallet.ActiveBids(c.Request().Context())
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"bids": bids})
}

func (h *Handler) WonAuctions(c echo.Context) error {
	auctions, err := h.wallet.WonAuctions(c.Request().Context())
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"auctions": auctions})
}

func (h *Handler) TopUpFlow(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"flow": h.wallet.Flow().Snapshot()})
}
