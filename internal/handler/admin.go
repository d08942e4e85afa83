package handler

import (
	"errors"
	"net/http"

	"eventpass/internal/dto"
	"eventpass/internal/qr"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	orders   service.OrderService
	tickets  service.TicketService
	sessions service.SessionService
}

func NewAdminHandler(orders service.OrderService, tickets service.TicketService, sessions service.SessionService) *AdminHandler {
	return &AdminHandler{orders: orders, tickets: tickets, sessions: sessions}
}

func (h *AdminHandler) PendingOrders(c echo.Context) error {
	orders, err := h.orders.Pending(c.Request().Context())
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	order, err := h.orders.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) Reject(c echo.Context) error {
	order, err := h.orders.Reject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Scan takes the QR payload a scanning device decoded and runs the
// validation. Expected scan outcomes (valid, already used, unknown
// ticket) all come back 200 with valid=true/false so gate devices
// branch on the body, not on transport errors.
func (h *AdminHandler) Scan(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payload, err := qr.Decode(req.Payload)
	if err != nil {
		return respondError(c, h.sessions, err)
	}

	result, err := h.tickets.Validate(c.Request().Context(), payload.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketAlreadyUsed):
			return c.JSON(http.StatusOK, dto.ScanResponse{Valid: false, Message: "Ticket already used"})
		case errors.Is(err, service.ErrTicketNotFound):
			return c.JSON(http.StatusOK, dto.ScanResponse{Valid: false, Message: "Invalid ticket"})
		default:
			return respondError(c, h.sessions, err)
		}
	}

	return c.JSON(http.StatusOK, dto.ScanResponse{
		Valid:   true,
		ScanID:  result.ScanID,
		Message: result.Message,
		Ticket:  result.Ticket,
	})
}
