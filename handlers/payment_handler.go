package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"pulasa-client/internal/payment"
	"pulasa-client/internal/payment/razorpay"
	"pulasa-client/internal/status"
)

// pendingSource is implemented by gateways that expose their open checkouts
// for the local surface to render.
type pendingSource interface {
	Pending(orderID string) (*razorpay.Checkout, bool)
}

// PendingCheckout returns the open checkout for an order, so the view layer
// can render the overlay with the server-issued descriptor.
func (h *Handler) PendingCheckout(c echo.Context) error {
	src, ok := h.gateway.(pendingSource)
	if !ok {
		return h.httpError(c, status.ErrOrderNotFound)
	}
	checkout, ok := src.Pending(c.PathParam("order_id"))
	if !ok {
		return h.httpError(c, status.ErrOrderNotFound)
	}
	return c.JSON(http.StatusOK, map[string]any{"checkout": checkout})
}

// CompleteCheckout is the overlay's success callback. It resolves the
// pending checkout with the reported identifiers; verification against the
// server happens inside the waiting bid flow, not here.
func (h *Handler) CompleteCheckout(c echo.Context) error {
	var req payment.Completion
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id required")
	}

	completer, ok := h.gateway.(payment.Completer)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "gateway resolves checkouts automatically")
	}
	if err := completer.Complete(req.OrderID, req); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "checkout submitted, verifying"})
}

// DismissCheckout is the overlay's cancel callback.
func (h *Handler) DismissCheckout(c echo.Context) error {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id required")
	}

	completer, ok := h.gateway.(payment.Completer)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "gateway resolves checkouts automatically")
	}
	if err := completer.Dismiss(req.OrderID); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "checkout dismissed"})
}
