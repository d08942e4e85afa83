package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"eventpass/internal/client"
	"eventpass/internal/model"
	"eventpass/internal/repository"
)

// SessionService owns the authenticated user and the persisted
// credentials. The user record is replaced wholesale on every
// successful auth call and cleared on logout.
type SessionService interface {
	// Restore loads a previously persisted session at process start.
	// The token is not re-validated against the backend; the first
	// authorized request settles that.
	Restore(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Logout(ctx context.Context) error
	CurrentUser() *model.User
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type sessionServiceImpl struct {
	backend     client.Backend
	credentials repository.CredentialRepository
	logger      *slog.Logger

	mu   sync.RWMutex
	user *model.User
}

func NewSessionService(
	backend client.Backend,
	credentials repository.CredentialRepository,
	logger *slog.Logger,
) SessionService {
	return &sessionServiceImpl{
		backend:     backend,
		credentials: credentials,
		logger:      logger,
	}
}

func (s *sessionServiceImpl) Restore(ctx context.Context) error {
	stored, err := s.credentials.User()
	if err != nil {
		return fmt.Errorf("load stored user: %w", err)
	}
	if stored == "" {
		return nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(stored), &user); err != nil {
		// A corrupt record is unrecoverable; drop the whole session.
		s.logger.Warn("stored user record unreadable, clearing session", "error", err)
		return s.credentials.Clear()
	}

	s.setUser(&user)
	s.logger.Info("session restored", "user", user.ID, "admin", user.IsAdmin)
	return nil
}

func (s *sessionServiceImpl) Login(ctx context.Context, email, password string) (*model.User, error) {
	auth, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(auth); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "user", auth.User.ID)
	return s.CurrentUser(), nil
}

// Register creates an account and starts a session. A backend failure
// is a failure, full stop: no locally fabricated user.
func (s *sessionServiceImpl) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	auth, err := s.backend.Register(ctx, client.RegisterRequest{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
	})
	if err != nil {
		return nil, err
	}
	if err := s.persist(auth); err != nil {
		return nil, err
	}
	s.logger.Info("registered", "user", auth.User.ID)
	return s.CurrentUser(), nil
}

func (s *sessionServiceImpl) persist(auth *client.AuthResponse) error {
	encoded, err := json.Marshal(auth.User)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := s.credentials.SetSession(auth.Access, auth.Refresh, string(encoded)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	user := auth.User
	s.setUser(&user)
	return nil
}

// Logout clears the persisted credentials and the in-memory user.
// Idempotent: logging out twice is a no-op.
func (s *sessionServiceImpl) Logout(ctx context.Context) error {
	if err := s.credentials.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	s.setUser(nil)
	s.logger.Info("logged out")
	return nil
}

func (s *sessionServiceImpl) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *sessionServiceImpl) setUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}
