package handler

import (
	"net/http"

	"eventpass/internal/dto"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orders   service.OrderService
	sessions service.SessionService
}

func NewOrderHandler(orders service.OrderService, sessions service.SessionService) *OrderHandler {
	return &OrderHandler{orders: orders, sessions: sessions}
}

// Checkout submits an order. Quantity is validated before anything
// leaves the process.
func (h *OrderHandler) Checkout(c echo.Context) error {
	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Create(c.Request().Context(), req.EventID, req.Quantity, req.PaymentMethod)
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, order)
}
