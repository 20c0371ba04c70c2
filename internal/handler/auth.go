package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventra/event-ticketing/internal/middleware"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/service"
	"github.com/eventra/event-ticketing/internal/utils"
)

// AuthHandler serves signup, login, refresh, logout and the current-account
// endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type signupReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=customer organizer"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResp struct {
	Account model.Account      `json:"account"`
	Access  utils.AccessToken  `json:"access"`
	Refresh utils.RefreshToken `json:"refresh"`
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	account, pair, err := h.auth.Signup(c.Request().Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, authResp{Account: account, Access: pair.Access, Refresh: pair.Refresh})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	account, pair, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, authResp{Account: account, Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh handles POST /auth/refresh, rotating the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	pair, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	if err := h.auth.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return fail(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	account, err := h.auth.Account(c.Request().Context(), accountID)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, account)
}
