package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAdmin         = errors.New("admin privileges required")

	ErrQuantityOutOfRange    = errors.New("quantity must be between 1 and 10")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")

	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAlreadyDecided = errors.New("order has already been decided")
	ErrInvalidOrderStatus  = errors.New("invalid order status")

	ErrTicketNotFound    = errors.New("invalid ticket")
	ErrTicketAlreadyUsed = errors.New("ticket already used")

	ErrTransactionIDRequired = errors.New("transaction id is required")
	ErrConfirmationExists    = errors.New("payment confirmation already submitted for this order")
)

// OrderDecidedError carries the status the order already holds, so the
// admin screen can say which way it went.
type OrderDecidedError struct {
	OrderID string
	Status  string
}

func (e OrderDecidedError) Error() string {
	return fmt.Sprintf("order %s is already %s", e.OrderID, e.Status)
}

func (e OrderDecidedError) Unwrap() error {
	return ErrOrderAlreadyDecided
}
