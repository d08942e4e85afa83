package dto

import "eventpass/internal/model"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type CheckoutRequest struct {
	EventID       string `json:"event_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

// ScanRequest carries the raw QR payload a scanning device decoded.
type ScanRequest struct {
	Payload string `json:"payload"`
}

type ScanResponse struct {
	Valid   bool          `json:"valid"`
	ScanID  string        `json:"scan_id,omitempty"`
	Message string        `json:"message"`
	Ticket  *model.Ticket `json:"ticket,omitempty"`
}

type PassResponse struct {
	TicketID string `json:"ticket_id"`
	Payload  string `json:"payload"`
}

// ErrorResponse is the uniform error body. Code is machine-readable so
// screens branch on it instead of matching message strings.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}
