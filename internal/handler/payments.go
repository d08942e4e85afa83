package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"eventpass/internal/client"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	payments service.PaymentService
	sessions service.SessionService
}

func NewPaymentHandler(payments service.PaymentService, sessions service.SessionService) *PaymentHandler {
	return &PaymentHandler{payments: payments, sessions: sessions}
}

func (h *PaymentHandler) Methods(c echo.Context) error {
	methods, err := h.payments.Methods(c.Request().Context())
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusOK, methods)
}

// SubmitConfirmation accepts the payment proof form: transaction id,
// optional notes, optional screenshot image.
func (h *PaymentHandler) SubmitConfirmation(c echo.Context) error {
	input := service.ConfirmationInput{
		TransactionID: c.FormValue("transaction_id"),
		Notes:         c.FormValue("confirmation_notes"),
	}

	if file, err := c.FormFile("payment_screenshot"); err == nil && file != nil {
		screenshot, err := readScreenshot(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable screenshot upload")
		}
		input.Screenshot = screenshot
	}

	confirmation, err := h.payments.SubmitConfirmation(c.Request().Context(), c.Param("orderID"), input)
	if err != nil {
		return respondError(c, h.sessions, err)
	}
	return c.JSON(http.StatusCreated, confirmation)
}

func readScreenshot(file *multipart.FileHeader) (*client.Screenshot, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &client.Screenshot{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
