package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"pulasa-client/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	user, err := h.session.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) SignUp(c echo.Context) error {
	var req auth.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	user, err := h.session.Register(c.Request().Context(), req)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

// TransferToken adopts a session token handed over by another app. The
// token is validated upstream before anything local changes.
func (h *Handler) TransferToken(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token required")
	}
	user, err := h.session.TransferToken(c.Request().Context(), req.Token)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	h.resetStores()
	return c.JSON(http.StatusOK, map[string]any{"message": "logged out"})
}

// resetStores drops every domain cache; they hold another user's data once
// the session is gone.
func (h *Handler) resetStores() {
	h.auctions.Reset()
	h.bids.Reset()
	h.wallet.Reset()
	h.notifications.Reset()
}

func (h *Handler) CurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"user": h.session.Current()})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var req auth.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	user, err := h.session.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": user})
}
