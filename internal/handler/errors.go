package handler

import (
	"errors"
	"net/http"

	"eventpass/internal/client"
	"eventpass/internal/dto"
	"eventpass/internal/qr"
	"eventpass/internal/service"

	"github.com/labstack/echo/v4"
)

// respondError maps domain outcomes and gateway errors onto the
// uniform error body. Nothing here is fatal: every failure resolves to
// a status, a code and a message.
func respondError(c echo.Context, sessions service.SessionService, err error) error {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return respond(c, http.StatusUnauthorized, "not_authenticated", err)
	case errors.Is(err, service.ErrNotAdmin):
		return respond(c, http.StatusForbidden, "forbidden", err)

	case errors.Is(err, service.ErrQuantityOutOfRange):
		return respond(c, http.StatusBadRequest, "quantity_out_of_range", err)
	case errors.Is(err, service.ErrPaymentMethodRequired):
		return respond(c, http.StatusBadRequest, "payment_method_required", err)
	case errors.Is(err, service.ErrUnknownPaymentMethod):
		return respond(c, http.StatusBadRequest, "unknown_payment_method", err)
	case errors.Is(err, service.ErrTransactionIDRequired):
		return respond(c, http.StatusBadRequest, "transaction_id_required", err)
	case errors.Is(err, qr.ErrInvalidPayload):
		return respond(c, http.StatusBadRequest, "invalid_payload", err)

	case errors.Is(err, service.ErrEventNotFound):
		return respond(c, http.StatusNotFound, "event_not_found", err)
	case errors.Is(err, service.ErrOrderNotFound):
		return respond(c, http.StatusNotFound, "order_not_found", err)
	case errors.Is(err, service.ErrTicketNotFound):
		return respond(c, http.StatusNotFound, "invalid_ticket", err)

	case errors.Is(err, service.ErrOrderAlreadyDecided):
		return respond(c, http.StatusConflict, "order_decided", err)
	case errors.Is(err, service.ErrTicketAlreadyUsed):
		return respond(c, http.StatusConflict, "already_used", err)
	case errors.Is(err, service.ErrConfirmationExists):
		return respond(c, http.StatusConflict, "confirmation_exists", err)
	case errors.Is(err, service.ErrInvalidOrderStatus):
		return respond(c, http.StatusBadRequest, "invalid_status", err)
	}

	if apiErr, ok := client.AsAPIError(err); ok {
		switch apiErr.Kind {
		case client.KindAuthExpired:
			// The gateway already wiped the credentials; drop the
			// in-memory user too so the next request starts clean.
			_ = sessions.Logout(c.Request().Context())
			return respond(c, http.StatusUnauthorized, "session_expired", apiErr)
		case client.KindTimeout:
			return respond(c, http.StatusGatewayTimeout, "timeout", apiErr)
		case client.KindNetworkUnavailable:
			return respond(c, http.StatusServiceUnavailable, "network_unavailable", apiErr)
		case client.KindNotFound:
			return respond(c, http.StatusNotFound, "not_found", apiErr)
		case client.KindConflict:
			return respond(c, http.StatusConflict, "conflict", apiErr)
		case client.KindServer:
			return respond(c, http.StatusBadGateway, "backend_error", apiErr)
		default:
			status := apiErr.Status
			if status < 400 || status > 499 {
				status = http.StatusBadRequest
			}
			return c.JSON(status, dto.ErrorResponse{
				Error:  apiErr.Message,
				Code:   "validation",
				Fields: apiErr.Fields,
			})
		}
	}

	return respond(c, http.StatusInternalServerError, "internal", errors.New("An unexpected error occurred. Please try again."))
}

func respond(c echo.Context, status int, code string, err error) error {
	return c.JSON(status, dto.ErrorResponse{Error: err.Error(), Code: code})
}
