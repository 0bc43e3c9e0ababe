package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"

	"pulasa-client/internal/api"
	"pulasa-client/models"
)

func (h *Handler) ListAuctions(c echo.Context) error {
	filters := map[string]string{}
	for _, key := range []string{"status", "search", "page"} {
		if v := c.QueryParam(key); v != "" {
			filters[key] = v
		}
	}

	auctions, err := h.auctions.List(c.Request().Context(), filters)
	if err != nil {
		// Serve the cache when the API is down; the client stays usable.
		if len(auctions) > 0 {
			return c.JSON(http.StatusOK, map[string]any{"auctions": auctions, "stale": true})
		}
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"auctions": auctions})
}

func (h *Handler) GetAuction(c echo.Context) error {
	id := c.PathParam("id")
	auction, err := h.auctions.Get(c.Request().Context(), id)
	if err != nil {
		return h.httpError(c, err)
	}

	now := time.Now()
	resp := map[string]any{
		"auction":     auction,
		"current_bid": auction.CurrentBid(),
		"status":      auction.StatusAt(now),
		"remaining":   models.FormatRemaining(auction.TimeRemaining(now)),
		"tracked":     h.tracker().IsTracked(id),
	}
	if auction.WinnerID != "" && !h.auctions.WonAcked(id) {
		resp["winner_id"] = auction.WinnerID
		resp["winning_amount"] = auction.WinningAmount
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) AuctionBids(c echo.Context) error {
	page, _ := intQuery(c, "page", 1)
	bids, err := h.bids.AuctionBids(c.Request().Context(), c.PathParam("id"), page)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"bids": bids})
}

func (h *Handler) CreateAuction(c echo.Context) error {
	var req api.CreateAuctionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	auction, err := h.auctions.Create(c.Request().Context(), req)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"auction": auction})
}

func (h *Handler) EndAuction(c echo.Context) error {
	auction, err := h.auctions.End(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"auction": auction})
}

func (h *Handler) AuctionStats(c echo.Context) error {
	stats, err := h.auctions.Stats(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"stats": stats})
}

func (h *Handler) Dashboard(c echo.Context) error {
	stats, err := h.auctions.Dashboard(c.Request().Context())
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"stats": stats})
}

// WatchAuction starts the detail-view tracking: room membership plus the
// one-second countdown.
func (h *Handler) WatchAuction(c echo.Context) error {
	id := c.PathParam("id")
	if _, err := h.auctions.Get(c.Request().Context(), id); err != nil {
		return h.httpError(c, err)
	}
	if err := h.tracker().Track(c.Request().Context(), id); err != nil {
		return h.httpError(c, err)
	}
	cd, _ := h.tracker().Countdown(id, time.Now())
	return c.JSON(http.StatusOK, map[string]any{"tracked": true, "countdown": cd})
}

func (h *Handler) UnwatchAuction(c echo.Context) error {
	h.tracker().Untrack(c.Request().Context(), c.PathParam("id"))
	return c.JSON(http.StatusOK, map[string]any{"tracked": false})
}

// AckWon dismisses the win banner so a refetch does not resurface it.
func (h *Handler) AckWon(c echo.Context) error {
	h.auctions.AckWon(c.PathParam("id"))
	return c.JSON(http.StatusOK, map[string]any{"acknowledged": true})
}

func intQuery(c echo.Context, key string, def int) (int, bool) {
	v := c.QueryParam(key)
	if v == "" {
		return def, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def, false
	}
	return n, true
}
