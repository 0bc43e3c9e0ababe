package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"

	"pulasa-client/services"
)

type placeBidRequest struct {
	AuctionID string          `json:"auction_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PlaceBid runs the full payment-backed bid flow and blocks until it
// reaches a terminal state. The checkout itself resolves through the
// /payments callbacks (or automatically with the simulated gateway).
func (h *Handler) PlaceBid(c echo.Context) error {
	var req placeBidRequest
	if err := c.Bind(&req); err != nil || req.AuctionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "auction_id and amount required")
	}

	snap, err := h.bids.PlaceBid(c.Request().Context(), req.AuctionID, req.Amount)
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

func (h *Handler) MyBids(c echo.Context) error {
	page, _ := intQuery(c, "page", 1)
	bids, err := h.bids.MyBids(c.Request().Context(), page)
	if err != nil {
		cached := h.bids.CachedBids()
		if len(cached) > 0 {
			return c.JSON(http.StatusOK, map[string]any{"bids": cached, "stale": true})
		}
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"bids": bids})
}

// BidFlow reports the current state of the bid submission state machine,
// including the platform fee preview for a prospective amount.
func (h *Handler) BidFlow(c echo.Context) error {
	resp := map[string]any{"flow": h.bids.Flow().Snapshot()}
	if v := c.QueryParam("amount"); v != "" {
		if amount, err := decimal.NewFromString(v); err == nil && amount.IsPositive() {
			fee := services.PlatformFee(amount)
			resp["fee"] = fee
			resp["total"] = amount.Add(fee)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
