package handler

import (
	"net/http"

	"eventpass/internal/dto"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	sessions service.SessionService
}

func NewAuthHandler(sessions service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.sessions.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context()); err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user := h.sessions.CurrentUser()
	if user == nil {
		return respondError(c, h.sessions, service.ErrNotAuthenticated)
	}
	return c.JSON(http.StatusOK, user)
}
