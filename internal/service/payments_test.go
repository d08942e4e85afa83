package service

import (
	"context"
	"testing"

	"eventpass/internal/client"
	"eventpass/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubmitConfirmation_RequiresTransactionID(t *testing.T) {
	backend := &mockBackend{}
	svc := NewPaymentService(backend, testSession(regularUser()), discardLogger())

	_, err := svc.SubmitConfirmation(context.Background(), "order-1", ConfirmationInput{})
	assert.ErrorIs(t, err, ErrTransactionIDRequired)
	backend.AssertNotCalled(t, "SubmitPaymentConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitConfirmation_OnePerOrder(t *testing.T) {
	backend := &mockBackend{}
	svc := NewPaymentService(backend, testSession(regularUser()), discardLogger())

	backend.On("GetOrder", mock.Anything, "order-1").Return(&model.Order{
		ID:                  "order-1",
		Status:              model.OrderPending,
		PaymentConfirmation: &model.PaymentConfirmation{ID: "conf-1", TransactionID: "TX-1"},
	}, nil)

	_, err := svc.SubmitConfirmation(context.Background(), "order-1", ConfirmationInput{TransactionID: "TX-2"})
	assert.ErrorIs(t, err, ErrConfirmationExists)

	// Rejected before the upload ever starts.
	backend.AssertNotCalled(t, "SubmitPaymentConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitConfirmation_UploadsProof(t *testing.T) {
	backend := &mockBackend{}
	svc := NewPaymentService(backend, testSession(regularUser()), discardLogger())

	backend.On("GetOrder", mock.Anything, "order-1").
		Return(&model.Order{ID: "order-1", Status: model.OrderPending}, nil)

	screenshot := &client.Screenshot{Filename: "receipt.png", ContentType: "image/png", Data: []byte{1, 2, 3}}
	backend.On("SubmitPaymentConfirmation", mock.Anything, "order-1", client.PaymentConfirmationRequest{
		TransactionID: "TX-1",
		Notes:         "paid via transfer",
		Screenshot:    screenshot,
	}).Return(&model.PaymentConfirmation{ID: "conf-1", OrderID: "order-1", TransactionID: "TX-1"}, nil)

	conf, err := svc.SubmitConfirmation(context.Background(), "order-1", ConfirmationInput{
		TransactionID: "TX-1",
		Notes:         "paid via transfer",
		Screenshot:    screenshot,
	})
	require.NoError(t, err)
	assert.Equal(t, "conf-1", conf.ID)
	backend.AssertExpectations(t)
}

func TestMethods_RequiresAuth(t *testing.T) {
	svc := NewPaymentService(&mockBackend{}, testSession(nil), discardLogger())

	_, err := svc.Methods(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
