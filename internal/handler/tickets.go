package handler

import (
	"net/http"

	"eventpass/internal/dto"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

type TicketHandler struct {
	tickets  service.TicketService
	sessions service.SessionService
}

func NewTicketHandler(tickets service.TicketService, sessions service.SessionService) *TicketHandler {
	return &TicketHandler{tickets: tickets, sessions: sessions}
}

func (h *TicketHandler) List(c echo.Context) error {
	tickets, err := h.tickets.FetchUserTickets(c.Request().Context())
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) Get(c echo.Context) error {
	ticket, err := h.tickets.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// Pass renders the QR payload for one of the user's tickets.
func (h *TicketHandler) Pass(c echo.Context) error {
	id := c.Param("id")
	payload, err := h.tickets.QRPayload(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, dto.PassResponse{TicketID: id, Payload: payload})
}
