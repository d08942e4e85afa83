package service

import (
	"context"
	"errors"
	"log/slog"

	"eventpass/internal/client"
	"eventpass/internal/model"
	"eventpass/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	MinOrderQuantity = 1
	MaxOrderQuantity = 10
)

// OrderService owns the order lifecycle: creation at checkout and the
// admin approve/reject decision. Status is monotone; an order never
// leaves approved or rejected.
type OrderService interface {
	// Create validates locally (quantity bounds, payment method) before
	// any network call, submits the order, and echoes it into the local
	// cache for optimistic display.
	Create(ctx context.Context, eventID string, quantity int, paymentMethod string) (*model.Order, error)
	// List returns the user's orders from the backend. When the backend
	// is unreachable it falls back to the cached copies so order history
	// still renders offline.
	List(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, orderID string) (*model.Order, error)
	// Pending returns orders awaiting an admin decision.
	Pending(ctx context.Context) ([]model.Order, error)
	Approve(ctx context.Context, orderID string) (*model.Order, error)
	Reject(ctx context.Context, orderID string) (*model.Order, error)
}

type orderServiceImpl struct {
	backend  client.Backend
	sessions SessionService
	cache    repository.OrderCacheRepository
	logger   *slog.Logger
}

func NewOrderService(
	backend client.Backend,
	sessions SessionService,
	cache repository.OrderCacheRepository,
	logger *slog.Logger,
) OrderService {
	return &orderServiceImpl{
		backend:  backend,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
	}
}

func (s *orderServiceImpl) Create(ctx context.Context, eventID string, quantity int, paymentMethod string) (*model.Order, error) {
	user := s.sessions.CurrentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	// The backend re-validates; this check just saves the round trip.
	if quantity < MinOrderQuantity || quantity > MaxOrderQuantity {
		return nil, ErrQuantityOutOfRange
	}
	if paymentMethod == "" {
		return nil, ErrPaymentMethodRequired
	}
	if !model.KnownPaymentMethod(paymentMethod) {
		return nil, ErrUnknownPaymentMethod
	}

	order, err := s.backend.CreateOrder(ctx, client.CreateOrderRequest{
		EventID:       eventID,
		Quantity:      quantity,
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		return nil, err
	}

	expected := order.Event.Price.Mul(decimal.NewFromInt(int64(quantity)))
	if !order.TotalAmount.Equal(expected) {
		s.logger.Warn("backend total differs from price*quantity",
			"order", order.ID, "total", order.TotalAmount, "expected", expected)
	}

	if err := s.cache.Upsert(ctx, cachedOrder(order, user.ID)); err != nil {
		s.logger.Warn("cache created order", "order", order.ID, "error", err)
	}
	s.logger.Info("order created", "order", order.ID, "event", eventID, "quantity", quantity)
	return order, nil
}

func (s *orderServiceImpl) List(ctx context.Context) ([]model.Order, error) {
	user := s.sessions.CurrentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	orders, err := s.backend.ListOrders(ctx)
	if err != nil {
		if offline(err) {
			cached, cacheErr := s.cache.ListByUser(ctx, user.ID)
			if cacheErr == nil {
				s.logger.Info("backend unreachable, serving cached orders", "count", len(cached))
				return ordersFromCache(cached), nil
			}
		}
		return nil, err
	}

	snapshot := make([]model.CachedOrder, len(orders))
	for i := range orders {
		snapshot[i] = *cachedOrder(&orders[i], user.ID)
	}
	if err := s.cache.ReplaceAll(ctx, user.ID, snapshot); err != nil {
		s.logger.Warn("replace cached orders", "error", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, orderID string) (*model.Order, error) {
	if s.sessions.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}
	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		if client.IsKind(err, client.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderServiceImpl) Pending(ctx context.Context) ([]model.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	orders, err := s.backend.ListOrders(ctx)
	if err != nil {
		if offline(err) {
			cached, cacheErr := s.cache.ListByStatus(ctx, string(model.OrderPending))
			if cacheErr == nil {
				s.logger.Info("backend unreachable, serving cached pending orders", "count", len(cached))
				return ordersFromCache(cached), nil
			}
		}
		return nil, err
	}
	pending := orders[:0]
	for _, order := range orders {
		if order.Status == model.OrderPending {
			pending = append(pending, order)
		}
	}
	return pending, nil
}

func (s *orderServiceImpl) Approve(ctx context.Context, orderID string) (*model.Order, error) {
	return s.decide(ctx, orderID, model.OrderApproved)
}

func (s *orderServiceImpl) Reject(ctx context.Context, orderID string) (*model.Order, error) {
	return s.decide(ctx, orderID, model.OrderRejected)
}

// decide moves a pending order to a terminal status. The backend fetch
// up front makes a second decision attempt fail before the PATCH, so
// ticket issuance on approval can never be triggered twice; the
// backend's own conflict rejection is honored as the final authority.
func (s *orderServiceImpl) decide(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if !status.Decided() {
		return nil, ErrInvalidOrderStatus
	}

	current, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		if client.IsKind(err, client.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if current.Status.Decided() {
		return nil, OrderDecidedError{OrderID: orderID, Status: string(current.Status)}
	}

	order, err := s.backend.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		if client.IsKind(err, client.KindConflict) {
			// Raced another admin; reflect backend truth locally.
			if latest, fetchErr := s.backend.GetOrder(ctx, orderID); fetchErr == nil {
				s.reflectDecision(ctx, latest)
				return nil, OrderDecidedError{OrderID: orderID, Status: string(latest.Status)}
			}
			return nil, OrderDecidedError{OrderID: orderID, Status: "decided"}
		}
		return nil, err
	}

	s.reflectDecision(ctx, order)
	s.logger.Info("order decided", "order", orderID, "status", order.Status,
		"tickets", len(order.Tickets), "quantity", order.Quantity)
	return order, nil
}

func (s *orderServiceImpl) reflectDecision(ctx context.Context, order *model.Order) {
	err := s.cache.Decide(ctx, order.ID, string(order.Status))
	if err != nil && !errors.Is(err, repository.ErrStale) && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("cache order decision", "order", order.ID, "error", err)
	}
}

func (s *orderServiceImpl) requireAdmin() error {
	user := s.sessions.CurrentUser()
	if user == nil {
		return ErrNotAuthenticated
	}
	if !user.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// offline reports whether the error means "no backend answer at all",
// the only case where cached data may stand in.
func offline(err error) bool {
	return client.IsKind(err, client.KindNetworkUnavailable) || client.IsKind(err, client.KindTimeout)
}

func cachedOrder(order *model.Order, userID string) *model.CachedOrder {
	return &model.CachedOrder{
		ID:            order.ID,
		UserID:        userID,
		EventID:       order.Event.ID,
		EventTitle:    order.Event.Title,
		EventDate:     order.Event.Date,
		EventLocation: order.Event.Location,
		Quantity:      order.Quantity,
		TotalAmount:   order.TotalAmount.String(),
		PaymentMethod: order.PaymentMethod,
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func ordersFromCache(cached []model.CachedOrder) []model.Order {
	orders := make([]model.Order, len(cached))
	for i, c := range cached {
		total, err := decimal.NewFromString(c.TotalAmount)
		if err != nil {
			total = decimal.Zero
		}
		orders[i] = model.Order{
			ID: c.ID,
			Event: model.Event{
				ID:       c.EventID,
				Title:    c.EventTitle,
				Date:     c.EventDate,
				Location: c.EventLocation,
			},
			Quantity:      c.Quantity,
			TotalAmount:   total,
			PaymentMethod: c.PaymentMethod,
			Status:        model.OrderStatus(c.Status),
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		}
	}
	return orders
}
