package service

import (
	"context"
	"errors"

	"eventpass/internal/client"
	"eventpass/internal/model"
)

var ErrEventNotFound = errors.New("event not found")

// EventService is a read-only view of the backend catalog. Events are
// never mutated by the client.
type EventService interface {
	List(ctx context.Context) ([]model.Event, error)
	Get(ctx context.Context, eventID string) (*model.Event, error)
}

type eventServiceImpl struct {
	backend client.Backend
}

func NewEventService(backend client.Backend) EventService {
	return &eventServiceImpl{backend: backend}
}

func (s *eventServiceImpl) List(ctx context.Context) ([]model.Event, error) {
	return s.backend.ListEvents(ctx)
}

func (s *eventServiceImpl) Get(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.backend.GetEvent(ctx, eventID)
	if err != nil {
		if client.IsKind(err, client.KindNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}
