package service

import (
	"context"

	"eventpass/internal/client"
	"eventpass/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, email, password string) (*client.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthResponse), args.Error(1)
}

func (m *mockBackend) Register(ctx context.Context, req client.RegisterRequest) (*client.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthResponse), args.Error(1)
}

func (m *mockBackend) ListEvents(ctx context.Context) ([]model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *mockBackend) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *mockBackend) CreateOrder(ctx context.Context, req client.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockBackend) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *mockBackend) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockBackend) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockBackend) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ticket), args.Error(1)
}

func (m *mockBackend) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *mockBackend) ValidateTicket(ctx context.Context, ticketID string) (*client.ValidateTicketResult, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ValidateTicketResult), args.Error(1)
}

func (m *mockBackend) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentMethod), args.Error(1)
}

func (m *mockBackend) SubmitPaymentConfirmation(ctx context.Context, orderID string, req client.PaymentConfirmationRequest) (*model.PaymentConfirmation, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentConfirmation), args.Error(1)
}

type mockOrderCache struct {
	mock.Mock
}

func (m *mockOrderCache) Upsert(ctx context.Context, order *model.CachedOrder) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderCache) ReplaceAll(ctx context.Context, userID string, orders []model.CachedOrder) error {
	return m.Called(ctx, userID, orders).Error(0)
}

func (m *mockOrderCache) Get(ctx context.Context, orderID string) (*model.CachedOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CachedOrder), args.Error(1)
}

func (m *mockOrderCache) ListByUser(ctx context.Context, userID string) ([]model.CachedOrder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CachedOrder), args.Error(1)
}

func (m *mockOrderCache) ListByStatus(ctx context.Context, status string) ([]model.CachedOrder, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CachedOrder), args.Error(1)
}

func (m *mockOrderCache) Decide(ctx context.Context, orderID, status string) error {
	return m.Called(ctx, orderID, status).Error(0)
}

type mockTicketCache struct {
	mock.Mock
}

func (m *mockTicketCache) ReplaceAll(ctx context.Context, tickets []model.CachedTicket) error {
	return m.Called(ctx, tickets).Error(0)
}

func (m *mockTicketCache) Upsert(ctx context.Context, ticket *model.CachedTicket) error {
	return m.Called(ctx, ticket).Error(0)
}

func (m *mockTicketCache) List(ctx context.Context) ([]model.CachedTicket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CachedTicket), args.Error(1)
}

func (m *mockTicketCache) GetByTicketID(ctx context.Context, ticketID string) (*model.CachedTicket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CachedTicket), args.Error(1)
}

func (m *mockTicketCache) MarkUsed(ctx context.Context, ticketID string) error {
	return m.Called(ctx, ticketID).Error(0)
}

type mockCredentials struct {
	mock.Mock
}

func (m *mockCredentials) AccessToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockCredentials) RefreshToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockCredentials) User() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockCredentials) SetAccessToken(token string) error {
	return m.Called(token).Error(0)
}

func (m *mockCredentials) SetSession(access, refresh, user string) error {
	return m.Called(access, refresh, user).Error(0)
}

func (m *mockCredentials) Clear() error {
	return m.Called().Error(0)
}
