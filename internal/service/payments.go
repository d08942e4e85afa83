package service

import (
	"context"
	"log/slog"

	"eventpass/internal/client"
	"eventpass/internal/model"
)

// PaymentService exposes the manual-payment flow: the method catalog
// shown on the payment-instructions screen and the proof submission.
type PaymentService interface {
	Methods(ctx context.Context) ([]model.PaymentMethod, error)
	// SubmitConfirmation attaches payment proof to an order. At most
	// one confirmation per order; a resubmission is rejected before the
	// upload starts.
	SubmitConfirmation(ctx context.Context, orderID string, input ConfirmationInput) (*model.PaymentConfirmation, error)
}

type ConfirmationInput struct {
	TransactionID string
	Notes         string
	Screenshot    *client.Screenshot
}

type paymentServiceImpl struct {
	backend  client.Backend
	sessions SessionService
	logger   *slog.Logger
}

func NewPaymentService(backend client.Backend, sessions SessionService, logger *slog.Logger) PaymentService {
	return &paymentServiceImpl{
		backend:  backend,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *paymentServiceImpl) Methods(ctx context.Context) ([]model.PaymentMethod, error) {
	if s.sessions.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}
	return s.backend.ListPaymentMethods(ctx)
}

func (s *paymentServiceImpl) SubmitConfirmation(ctx context.Context, orderID string, input ConfirmationInput) (*model.PaymentConfirmation, error) {
	if s.sessions.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}
	if input.TransactionID == "" {
		return nil, ErrTransactionIDRequired
	}

	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		if client.IsKind(err, client.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.PaymentConfirmation != nil {
		return nil, ErrConfirmationExists
	}

	confirmation, err := s.backend.SubmitPaymentConfirmation(ctx, orderID, client.PaymentConfirmationRequest{
		TransactionID: input.TransactionID,
		Notes:         input.Notes,
		Screenshot:    input.Screenshot,
	})
	if err != nil {
		if client.IsKind(err, client.KindConflict) {
			return nil, ErrConfirmationExists
		}
		return nil, err
	}

	s.logger.Info("payment confirmation submitted", "order", orderID,
		"screenshot", input.Screenshot != nil)
	return confirmation, nil
}
