// Package qr encodes and decodes the QR payload exchanged with
// scanning devices. The payload is a JSON object carrying exactly the
// ticket, event, user and order ids; scanners parse it back verbatim.
package qr

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Payload struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	OrderID  string `json:"order_id"`
}

var ErrInvalidPayload = errors.New("invalid qr payload")

func Encode(p Payload) (string, error) {
	if p.TicketID == "" {
		return "", fmt.Errorf("%w: missing ticket_id", ErrInvalidPayload)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return string(data), nil
}

// Decode parses a scanned payload. Only ticket_id is mandatory: older
// passes in the wild carry the ids the client knew at render time.
func Decode(data string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.TicketID == "" {
		return Payload{}, fmt.Errorf("%w: missing ticket_id", ErrInvalidPayload)
	}
	return p, nil
}
