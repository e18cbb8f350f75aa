package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/core/datamodel/worksession"
	"github.com/gestaolite/backoffice/internal/core/events"
)

type StoreAPI interface {
	Load() (*user.User, error)
	Save(u *user.User) error
	Clear() error
	SaveWorkSession(ws *worksession.WorkSession) error
	LoadWorkSession() (*worksession.WorkSession, error)
	ClearWorkSession() error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the session lifecycle: restore at startup, login, logout, and
// the session scope context that every backend request is derived from. The
// scope is cancelled at logout so a response arriving late cannot touch state
// belonging to a newer (or no) session.
type Service struct {
	store  StoreAPI
	tokens *TokenGenerator
	bus    EventPublisher
	logger *slog.Logger

	mu          sync.RWMutex
	current     *user.User
	scopeCtx    context.Context
	scopeCancel context.CancelFunc
}

func NewService(store StoreAPI, tokens *TokenGenerator, bus EventPublisher, logger *slog.Logger) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		bus:    bus,
		logger: logger,
	}
	s.restore()
	return s
}

// restore brings back a persisted session at startup. Load never fails loudly:
// a corrupt slot means the user simply lands on the login screen.
func (s *Service) restore() {
	u, err := s.store.Load()
	if err != nil {
		s.logger.Error("session restore failed", "error", err)
		return
	}
	if u == nil {
		return
	}

	s.mu.Lock()
	s.current = u
	s.scopeCtx, s.scopeCancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.logger.Info("session restored", "phone", u.Phone)
}

// Login validates the identity, persists it and opens a fresh session scope.
func (s *Service) Login(dto LoginDTO) (*user.User, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	u := &user.User{Name: dto.Name, Phone: dto.Phone}
	if err := s.store.Save(u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	if s.scopeCancel != nil {
		s.scopeCancel()
	}
	s.current = u
	s.scopeCtx, s.scopeCancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	if err := s.bus.Publish(context.Background(), events.NewSessionStartedEvent(u.Phone, u.Name)); err != nil {
		s.logger.Warn("failed to publish session started event", "error", err)
	}

	s.logger.Info("session started", "phone", u.Phone)
	return u, token, nil
}

// Logout clears the persisted identity and the work session, cancels the
// session scope and notifies subscribers.
func (s *Service) Logout() error {
	s.mu.Lock()
	phone := ""
	if s.current != nil {
		phone = s.current.Phone
	}
	s.current = nil
	if s.scopeCancel != nil {
		s.scopeCancel()
		s.scopeCancel = nil
	}
	s.scopeCtx = nil
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return err
	}

	if phone != "" {
		if err := s.bus.Publish(context.Background(), events.NewSessionEndedEvent(phone)); err != nil {
			s.logger.Warn("failed to publish session ended event", "error", err)
		}
	}

	s.logger.Info("session ended", "phone", phone)
	return nil
}

// CurrentUser returns the logged-in identity, or nil.
func (s *Service) CurrentUser() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Scope returns the session scope context. When nobody is logged in it
// returns a background context; the gateway fails fast before using it.
func (s *Service) Scope() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scopeCtx == nil {
		return context.Background()
	}
	return s.scopeCtx
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

func (s *Service) WorkSession() (*worksession.WorkSession, error) {
	return s.store.LoadWorkSession()
}

func (s *Service) StartWorkSession(ws *worksession.WorkSession) error {
	return s.store.SaveWorkSession(ws)
}

func (s *Service) EndWorkSession() error {
	return s.store.ClearWorkSession()
}
