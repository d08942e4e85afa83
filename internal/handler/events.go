package handler

import (
	"net/http"

	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	events   service.EventService
	sessions service.SessionService
}

func NewEventHandler(events service.EventService, sessions service.SessionService) *EventHandler {
	return &EventHandler{events: events, sessions: sessions}
}

func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.events.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, event)
}
