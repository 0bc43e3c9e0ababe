// Package handlers is the local HTTP surface: the view layer talks to it on
// localhost and every route maps onto a domain store operation. Errors from
// the upstream API pass through with the server's message verbatim.
package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"

	"pulasa-client/internal/api"
	"pulasa-client/internal/auth"
	"pulasa-client/internal/payment"
	"pulasa-client/internal/status"
	"pulasa-client/security"
	"pulasa-client/services"
	"pulasa-client/utils"
)

// TrackerSource yields the live tracker; it is swapped when the realtime
// channel is recreated on login.
type TrackerSource func() *services.Tracker

type Handler struct {
	session       *auth.Session
	auctions      *services.AuctionService
	tracker       TrackerSource
	bids          *services.BidService
	wallet        *services.WalletService
	notifications *services.NotificationService
	gateway       payment.Gateway
	log           *logrus.Entry
}

func New(session *auth.Session, auctions *services.AuctionService, tracker TrackerSource, bids *services.BidService, wallet *services.WalletService, notifications *services.NotificationService, gateway payment.Gateway) *Handler {
	return &Handler{
		session:       session,
		auctions:      auctions,
		tracker:       tracker,
		bids:          bids,
		wallet:        wallet,
		notifications: notifications,
		gateway:       gateway,
		log:           utils.Component("http"),
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	session := e.Group("/session")
	session.POST("/login", h.Login)
	session.POST("/register", h.SignUp)
	session.POST("/transfer", h.TransferToken)
	session.POST("/logout", h.Logout, h.requireAuth)
	session.GET("", h.CurrentUser, h.requireAuth)
	session.PATCH("/profile", h.UpdateProfile, h.requireAuth)

	auctions := e.Group("/auctions", h.adoptTransferToken)
	auctions.GET("", h.ListAuctions)
	auctions.GET("/:id", h.GetAuction)
	auctions.GET("/:id/bids", h.AuctionBids)
	auctions.POST("", h.CreateAuction, h.requireAuth, h.requireAdmin)
	auctions.POST("/:id/end", h.EndAuction, h.requireAuth, h.requireAdmin)
	auctions.GET("/:id/stats", h.AuctionStats, h.requireAuth, h.requireAdmin)
	auctions.POST("/:id/watch", h.WatchAuction, h.requireAuth)
	auctions.POST("/:id/unwatch", h.UnwatchAuction, h.requireAuth)
	auctions.POST("/:id/ack-won", h.AckWon, h.requireAuth)

	bids := e.Group("/bids", h.requireAuth)
	bids.POST("", h.PlaceBid, security.SubmitRateLimit())
	bids.GET("/my", h.MyBids)
	bids.GET("/flow", h.BidFlow)

	payments := e.Group("/payments", h.requireAuth)
	payments.GET("/pending/:order_id", h.PendingCheckout)
	payments.POST("/complete", h.CompleteCheckout)
	payments.POST("/dismiss", h.DismissCheckout)

	wallet := e.Group("/wallet", h.requireAuth)
	wallet.GET("", h.WalletBalance)
	wallet.POST("/topup", h.TopUp, security.SubmitRateLimit())
	wallet.POST("/withdraw", h.Withdraw)
	wallet.GET("/transactions", h.Transactions)
	wallet.GET("/active-bids", h.ActiveBids)
	wallet.GET("/won", h.WonAuctions)
	wallet.GET("/flow", h.TopUpFlow)

	admin := e.Group("/admin", h.requireAuth, h.requireAdmin)
	admin.GET("/dashboard", h.Dashboard)

	notifications := e.Group("/notifications", h.requireAuth)
	notifications.GET("", h.Notifications)
	notifications.GET("/count", h.NotificationCount)
	notifications.POST("/:id/read", h.MarkRead)
	notifications.POST("/read-all", h.MarkAllRead)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":        "ok",
		"authenticated": h.session.IsAuthenticated(),
	})
}

// requireAuth rejects requests while no session is active.
func (h *Handler) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.session.IsAuthenticated() {
			return echo.NewHTTPError(http.StatusUnauthorized, status.ErrNotAuthenticated.Error())
		}
		return next(c)
	}
}

func (h *Handler) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.session.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// adoptTransferToken handles the ?auth=<token> handshake: when another app
// hands over a session token in the query string, validate and adopt it,
// then redirect to the same URL with the token stripped so the one-time
// credential never survives in the address bar or a bookmark. A bad token
// is dropped silently; the page still renders logged out.
func (h *Handler) adoptTransferToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("auth")
		if token == "" || h.session.IsAuthenticated() {
			return next(c)
		}
		if _, err := h.session.TransferToken(c.Request().Context(), token); err != nil {
			h.log.WithError(err).Warn("transfer token rejected")
			return next(c)
		}

		q := c.Request().URL.Query()
		q.Del("auth")
		target := c.Request().URL.Path
		if enc := q.Encode(); enc != "" {
			target += "?" + enc
		}
		return c.Redirect(http.StatusSeeOther, target)
	}
}

// httpError maps domain errors onto HTTP codes. Upstream API errors keep
// their original status and message. A 401/403 from the auction API means
// the token died mid-session: user, token and domain caches are cleared
// together so every later request sees the logged-out state.
func (h *Handler) httpError(c echo.Context, err error) error {
	if api.IsAuthError(err) && h.session.IsAuthenticated() {
		h.log.Warn("upstream rejected session token, logging out")
		h.session.Clear(c.Request().Context())
		h.resetStores()
		return echo.NewHTTPError(http.StatusUnauthorized, status.ErrNotAuthenticated.Error())
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return echo.NewHTTPError(apiErr.StatusCode, apiErr.Message)
	}

	switch {
	case errors.Is(err, status.ErrNotAuthenticated), errors.Is(err, status.ErrTokenInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, status.ErrInvalidAmount),
		errors.Is(err, status.ErrBidTooLow),
		errors.Is(err, status.ErrAuctionClosed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, status.ErrBidInFlight):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, status.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, status.ErrPaymentDismissed), errors.Is(err, status.ErrFailedPayment):
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
