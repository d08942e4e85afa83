package service

import (
	"context"
	"fmt"
	"log/slog"

	"eventpass/internal/client"
	"eventpass/internal/model"
	"eventpass/internal/qr"
	"eventpass/internal/repository"

	"github.com/google/uuid"
)

// ValidationResult is the scan-time outcome for an accepted ticket.
type ValidationResult struct {
	ScanID  string
	Message string
	Ticket  *model.Ticket
}

// TicketService holds the user's issued tickets and runs the scan-time
// validation. The backend's validate call is the authority; the local
// cache only short-circuits tickets already known to be used.
type TicketService interface {
	// FetchUserTickets pulls the ticket wallet from the backend. Fetch
	// failures are recoverable: when offline the cached set is served.
	FetchUserTickets(ctx context.Context) ([]model.Ticket, error)
	Get(ctx context.Context, ticketID string) (*model.Ticket, error)
	// Validate accepts an unused ticket exactly once. A second scan of
	// the same ticket gets ErrTicketAlreadyUsed, an unknown one
	// ErrTicketNotFound; neither mutates anything.
	Validate(ctx context.Context, ticketID string) (*ValidationResult, error)
	// QRPayload renders the pass content for a ticket the user holds.
	QRPayload(ctx context.Context, ticketID string) (string, error)
}

type ticketServiceImpl struct {
	backend  client.Backend
	sessions SessionService
	cache    repository.TicketCacheRepository
	logger   *slog.Logger
}

func NewTicketService(
	backend client.Backend,
	sessions SessionService,
	cache repository.TicketCacheRepository,
	logger *slog.Logger,
) TicketService {
	return &ticketServiceImpl{
		backend:  backend,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
	}
}

func (s *ticketServiceImpl) FetchUserTickets(ctx context.Context) ([]model.Ticket, error) {
	if s.sessions.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}

	tickets, err := s.backend.ListTickets(ctx)
	if err != nil {
		if offline(err) {
			cached, cacheErr := s.cache.List(ctx)
			if cacheErr == nil {
				s.logger.Info("backend unreachable, serving cached tickets", "count", len(cached))
				return ticketsFromCache(cached), nil
			}
		}
		return nil, err
	}

	snapshot := make([]model.CachedTicket, len(tickets))
	for i := range tickets {
		snapshot[i] = *cachedTicket(&tickets[i])
	}
	if err := s.cache.ReplaceAll(ctx, snapshot); err != nil {
		s.logger.Warn("replace cached tickets", "error", err)
	}
	return tickets, nil
}

func (s *ticketServiceImpl) Get(ctx context.Context, ticketID string) (*model.Ticket, error) {
	if s.sessions.CurrentUser() == nil {
		return nil, ErrNotAuthenticated
	}
	ticket, err := s.backend.GetTicket(ctx, ticketID)
	if err != nil {
		if client.IsKind(err, client.KindNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *ticketServiceImpl) Validate(ctx context.Context, ticketID string) (*ValidationResult, error) {
	user := s.sessions.CurrentUser()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if !user.IsAdmin {
		return nil, ErrNotAdmin
	}

	scanID := uuid.NewString()

	// Fast path: a ticket the local snapshot already knows is used can
	// be rejected without a round trip. The snapshot is never trusted
	// to accept: two gates scanning the same ticket race at the
	// backend, so acceptance always comes from the validate call.
	if cached, err := s.cache.GetByTicketID(ctx, ticketID); err == nil && cached.IsUsed {
		s.logger.Info("scan rejected from local snapshot", "scan", scanID, "ticket", ticketID)
		return nil, ErrTicketAlreadyUsed
	}

	result, err := s.backend.ValidateTicket(ctx, ticketID)
	if err != nil {
		switch {
		case client.IsKind(err, client.KindNotFound):
			s.logger.Info("scan rejected, unknown ticket", "scan", scanID, "ticket", ticketID)
			return nil, ErrTicketNotFound
		case client.IsKind(err, client.KindConflict):
			// Backend says used; snap the local flag to match.
			if markErr := s.cache.MarkUsed(ctx, ticketID); markErr != nil {
				s.logger.Warn("mark cached ticket used", "ticket", ticketID, "error", markErr)
			}
			s.logger.Info("scan rejected, already used", "scan", scanID, "ticket", ticketID)
			return nil, ErrTicketAlreadyUsed
		default:
			return nil, err
		}
	}

	s.rememberUsed(ctx, ticketID, result.Ticket)

	message := result.Message
	if message == "" {
		message = validationMessage(ctx, s.cache, result.Ticket, ticketID)
	}
	s.logger.Info("scan accepted", "scan", scanID, "ticket", ticketID)
	return &ValidationResult{ScanID: scanID, Message: message, Ticket: result.Ticket}, nil
}

func (s *ticketServiceImpl) QRPayload(ctx context.Context, ticketID string) (string, error) {
	user := s.sessions.CurrentUser()
	if user == nil {
		return "", ErrNotAuthenticated
	}

	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}

	return qr.Encode(qr.Payload{
		TicketID: ticket.TicketID,
		EventID:  ticket.Order.Event.ID,
		UserID:   user.ID,
		OrderID:  ticket.Order.ID,
	})
}

// rememberUsed records an accepted scan in the local snapshot so a
// rescan is rejected without a round trip, including tickets the
// snapshot had never seen before this scan.
func (s *ticketServiceImpl) rememberUsed(ctx context.Context, ticketID string, ticket *model.Ticket) {
	if ticket != nil {
		cached := cachedTicket(ticket)
		cached.IsUsed = true
		if err := s.cache.Upsert(ctx, cached); err != nil {
			s.logger.Warn("cache scanned ticket", "ticket", ticketID, "error", err)
		}
		return
	}
	if err := s.cache.MarkUsed(ctx, ticketID); err != nil {
		s.logger.Warn("mark cached ticket used", "ticket", ticketID, "error", err)
	}
}

func validationMessage(ctx context.Context, cache repository.TicketCacheRepository, ticket *model.Ticket, ticketID string) string {
	title := ""
	if ticket != nil {
		title = ticket.Order.Event.Title
	}
	if title == "" {
		if cached, err := cache.GetByTicketID(ctx, ticketID); err == nil {
			title = cached.EventTitle
		}
	}
	if title == "" {
		return "Ticket valid"
	}
	return fmt.Sprintf("Ticket valid for %s", title)
}

func cachedTicket(ticket *model.Ticket) *model.CachedTicket {
	return &model.CachedTicket{
		ID:         ticket.ID,
		TicketID:   ticket.TicketID,
		OrderID:    ticket.Order.ID,
		EventID:    ticket.Order.Event.ID,
		EventTitle: ticket.Order.Event.Title,
		IsUsed:     ticket.IsUsed,
		CreatedAt:  ticket.CreatedAt,
	}
}

func ticketsFromCache(cached []model.CachedTicket) []model.Ticket {
	tickets := make([]model.Ticket, len(cached))
	for i, c := range cached {
		tickets[i] = model.Ticket{
			ID:        c.ID,
			TicketID:  c.TicketID,
			IsUsed:    c.IsUsed,
			CreatedAt: c.CreatedAt,
			Order: model.TicketOrder{
				ID: c.OrderID,
				Event: model.TicketEvent{
					ID:    c.EventID,
					Title: c.EventTitle,
				},
			},
		}
	}
	return tickets
}
