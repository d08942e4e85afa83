package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"eventpass/internal/client"
	"eventpass/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession(user *model.User) SessionService {
	return &sessionServiceImpl{logger: discardLogger(), user: user}
}

func regularUser() *model.User {
	return &model.User{ID: "user-1", Name: "Test User", Email: "user@example.com"}
}

func adminUser() *model.User {
	return &model.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", IsAdmin: true}
}

func testEvent() model.Event {
	return model.Event{
		ID:       "E1",
		Title:    "Summer Festival",
		Date:     time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
		Price:    decimal.NewFromInt(50),
		Location: "City Arena",
	}
}

func TestCreateOrder_QuantityBounds(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(regularUser()), cache, discardLogger())

	for _, quantity := range []int{0, -1, 11, 100} {
		_, err := svc.Create(context.Background(), "E1", quantity, "bank")
		assert.ErrorIs(t, err, ErrQuantityOutOfRange, "quantity %d", quantity)
	}

	// Out-of-range quantities must be rejected before any network call.
	backend.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_RequiresPaymentMethod(t *testing.T) {
	backend := &mockBackend{}
	svc := NewOrderService(backend, testSession(regularUser()), &mockOrderCache{}, discardLogger())

	_, err := svc.Create(context.Background(), "E1", 2, "")
	assert.ErrorIs(t, err, ErrPaymentMethodRequired)
	backend.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_RejectsUnknownPaymentMethod(t *testing.T) {
	backend := &mockBackend{}
	svc := NewOrderService(backend, testSession(regularUser()), &mockOrderCache{}, discardLogger())

	_, err := svc.Create(context.Background(), "E1", 2, "carrier_pigeon")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
	backend.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_RequiresAuth(t *testing.T) {
	svc := NewOrderService(&mockBackend{}, testSession(nil), &mockOrderCache{}, discardLogger())

	_, err := svc.Create(context.Background(), "E1", 2, "bank")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCreateOrder_EchoesIntoCache(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(regularUser()), cache, discardLogger())

	created := &model.Order{
		ID:            "order-1",
		Event:         testEvent(),
		Quantity:      3,
		TotalAmount:   decimal.NewFromInt(150),
		PaymentMethod: "bank",
		Status:        model.OrderPending,
		CreatedAt:     time.Now(),
	}
	backend.On("CreateOrder", mock.Anything, client.CreateOrderRequest{
		EventID:       "E1",
		Quantity:      3,
		PaymentMethod: "bank",
	}).Return(created, nil)
	cache.On("Upsert", mock.Anything, mock.MatchedBy(func(c *model.CachedOrder) bool {
		return c.ID == "order-1" && c.UserID == "user-1" &&
			c.EventTitle == "Summer Festival" && c.TotalAmount == "150" &&
			c.Status == string(model.OrderPending)
	})).Return(nil)

	order, err := svc.Create(context.Background(), "E1", 3, "bank")
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(150)), "total = price * quantity")
	backend.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestApproveOrder_IssuesTicketsOnce(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(adminUser()), cache, discardLogger())

	pending := &model.Order{
		ID: "order-1", Event: testEvent(), Quantity: 3,
		TotalAmount: decimal.NewFromInt(150), Status: model.OrderPending,
	}
	approved := &model.Order{
		ID: "order-1", Event: testEvent(), Quantity: 3,
		TotalAmount: decimal.NewFromInt(150), Status: model.OrderApproved,
		Tickets: []model.Ticket{
			{ID: "t1", TicketID: "order-1-1"},
			{ID: "t2", TicketID: "order-1-2"},
			{ID: "t3", TicketID: "order-1-3"},
		},
	}

	backend.On("GetOrder", mock.Anything, "order-1").Return(pending, nil).Once()
	backend.On("UpdateOrderStatus", mock.Anything, "order-1", model.OrderApproved).Return(approved, nil).Once()
	cache.On("Decide", mock.Anything, "order-1", string(model.OrderApproved)).Return(nil)

	order, err := svc.Approve(context.Background(), "order-1")
	require.NoError(t, err)

	assert.Equal(t, model.OrderApproved, order.Status)
	assert.Len(t, order.Tickets, order.Quantity, "one ticket per unit of quantity")
	backend.AssertExpectations(t)
}

func TestApproveOrder_SecondApprovalRejected(t *testing.T) {
	backend := &mockBackend{}
	svc := NewOrderService(backend, testSession(adminUser()), &mockOrderCache{}, discardLogger())

	decided := &model.Order{ID: "order-1", Status: model.OrderApproved, Quantity: 3}
	backend.On("GetOrder", mock.Anything, "order-1").Return(decided, nil)

	_, err := svc.Approve(context.Background(), "order-1")
	require.ErrorIs(t, err, ErrOrderAlreadyDecided)

	var decidedErr OrderDecidedError
	require.ErrorAs(t, err, &decidedErr)
	assert.Equal(t, string(model.OrderApproved), decidedErr.Status)

	// No second PATCH, hence no second ticket issuance.
	backend.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectAfterApprove_NoTransition(t *testing.T) {
	backend := &mockBackend{}
	svc := NewOrderService(backend, testSession(adminUser()), &mockOrderCache{}, discardLogger())

	approved := &model.Order{ID: "order-1", Status: model.OrderApproved}
	backend.On("GetOrder", mock.Anything, "order-1").Return(approved, nil)

	_, err := svc.Reject(context.Background(), "order-1")
	assert.ErrorIs(t, err, ErrOrderAlreadyDecided)
	backend.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecide_BackendConflictHonored(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(adminUser()), cache, discardLogger())

	pending := &model.Order{ID: "order-1", Status: model.OrderPending}
	rejected := &model.Order{ID: "order-1", Status: model.OrderRejected}

	// Another admin decided between our read and our PATCH.
	backend.On("GetOrder", mock.Anything, "order-1").Return(pending, nil).Once()
	backend.On("UpdateOrderStatus", mock.Anything, "order-1", model.OrderApproved).
		Return(nil, &client.APIError{Kind: client.KindConflict, Status: 409, Message: "already decided"}).Once()
	backend.On("GetOrder", mock.Anything, "order-1").Return(rejected, nil).Once()
	cache.On("Decide", mock.Anything, "order-1", string(model.OrderRejected)).Return(nil)

	_, err := svc.Approve(context.Background(), "order-1")
	require.ErrorIs(t, err, ErrOrderAlreadyDecided)

	var decidedErr OrderDecidedError
	require.ErrorAs(t, err, &decidedErr)
	assert.Equal(t, string(model.OrderRejected), decidedErr.Status)
}

func TestDecide_RequiresAdmin(t *testing.T) {
	backend := &mockBackend{}
	svc := NewOrderService(backend, testSession(regularUser()), &mockOrderCache{}, discardLogger())

	_, err := svc.Approve(context.Background(), "order-1")
	assert.ErrorIs(t, err, ErrNotAdmin)
	backend.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestPending_FiltersDecidedOrders(t *testing.T) {
	backend := &mockBackend{}
	svc := NewOrderService(backend, testSession(adminUser()), &mockOrderCache{}, discardLogger())

	backend.On("ListOrders", mock.Anything).Return([]model.Order{
		{ID: "a", Status: model.OrderPending},
		{ID: "b", Status: model.OrderApproved},
		{ID: "c", Status: model.OrderPending},
		{ID: "d", Status: model.OrderRejected},
	}, nil)

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "c", pending[1].ID)
}

func TestPending_FallsBackToCacheWhenOffline(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(adminUser()), cache, discardLogger())

	backend.On("ListOrders", mock.Anything).
		Return(nil, &client.APIError{Kind: client.KindNetworkUnavailable, Message: "no connection"})
	cache.On("ListByStatus", mock.Anything, string(model.OrderPending)).Return([]model.CachedOrder{{
		ID:         "order-1",
		UserID:     "user-1",
		EventTitle: "Summer Festival",
		Quantity:   2,
		Status:     string(model.OrderPending),
	}}, nil)

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.OrderPending, pending[0].Status)
}

func TestList_FallsBackToCacheWhenOffline(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(regularUser()), cache, discardLogger())

	backend.On("ListOrders", mock.Anything).
		Return(nil, &client.APIError{Kind: client.KindNetworkUnavailable, Message: "no connection"})
	cache.On("ListByUser", mock.Anything, "user-1").Return([]model.CachedOrder{{
		ID:         "order-1",
		UserID:     "user-1",
		EventTitle: "Summer Festival",
		Quantity:   2,
		// Denormalized event fields keep history readable offline.
		TotalAmount: "100",
		Status:      string(model.OrderApproved),
	}}, nil)

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Summer Festival", orders[0].Event.Title)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, model.OrderApproved, orders[0].Status)
}

func TestList_ServerErrorsAreNotMasked(t *testing.T) {
	backend := &mockBackend{}
	cache := &mockOrderCache{}
	svc := NewOrderService(backend, testSession(regularUser()), cache, discardLogger())

	serverErr := &client.APIError{Kind: client.KindServer, Status: 500, Message: "boom"}
	backend.On("ListOrders", mock.Anything).Return(nil, serverErr)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, serverErr)
	cache.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}
