package bootstrap

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/company"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/gateway"
	"github.com/gestaolite/backoffice/internal/navigation"
)

type PermissionResolver interface {
	FetchUserPermissions(ctx context.Context, phone string) (permissionDatamodel.MenuPermissions, error)
}

type CompanyResolver interface {
	Refresh(ctx context.Context, u *userDatamodel.User) (*company.Affiliations, error)
}

type SessionSource interface {
	CurrentUser() *userDatamodel.User
}

// State is the application-level state established by one bootstrap run.
// It replaces the ambient globals of the original front-end: one struct,
// owned by the Manager, initialized at login and torn down at logout.
type State struct {
	User         *userDatamodel.User
	Permissions  permissionDatamodel.MenuPermissions
	Affiliations *company.Affiliations
	CanClockIn   bool
	Ready        bool
}

// Manager runs the bootstrap sequence: permissions first, then company
// affiliations, strictly in that order. Whatever fails, the loading state is
// always cleared; the user lands on whatever partial state was established
// rather than an infinite spinner.
type Manager struct {
	sessions    SessionSource
	permissions PermissionResolver
	companies   CompanyResolver
	nav         *navigation.Controller
	errorFlag   *gateway.ErrorFlag
	logger      *slog.Logger

	mu      sync.RWMutex
	state   State
	loading bool
}

func NewManager(sessions SessionSource, permissions PermissionResolver, companies CompanyResolver, nav *navigation.Controller, flag *gateway.ErrorFlag, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:    sessions,
		permissions: permissions,
		companies:   companies,
		nav:         nav,
		errorFlag:   flag,
		logger:      logger,
	}
}

// Run executes the bootstrap sequence for the current session and returns
// the resulting state. Unexpected resolver errors are logged, never
// propagated: they abort the remaining steps but leave the app usable.
func (m *Manager) Run(ctx context.Context) State {
	u := m.sessions.CurrentUser()
	if !u.IsValid() {
		m.Reset()
		return m.snapshot()
	}

	m.setLoading(true)
	defer m.setLoading(false)

	// A fresh bootstrap means a fresh chance: the previous fatal banner
	// does not outlive the login that triggered it.
	m.errorFlag.Reset()

	state := State{User: u}

	perms, err := m.permissions.FetchUserPermissions(ctx, u.Phone)
	if err != nil {
		m.logger.Error("bootstrap: permission resolution failed", "phone", u.Phone, "error", err)
		m.commit(state)
		return m.snapshot()
	}
	state.Permissions = perms

	affiliations, err := m.companies.Refresh(ctx, u)
	if err != nil {
		m.logger.Error("bootstrap: company refresh failed", "phone", u.Phone, "error", err)
		state.Ready = true
		m.commit(state)
		return m.snapshot()
	}
	state.Affiliations = affiliations
	state.CanClockIn = affiliations.CanClockIn()
	state.Ready = true

	m.commit(state)
	return m.snapshot()
}

func (m *Manager) commit(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	m.nav.Update(state.Permissions, state.CanClockIn)
}

// Reset tears the state down at logout.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.state = State{}
	m.loading = false
	m.mu.Unlock()

	m.nav.Reset()
}

// State returns the last committed application state.
func (m *Manager) State() State {
	return m.snapshot()
}

// BannerError returns the active fatal-error banner, or nil. The first
// backend failure wins and stays up until the next bootstrap run clears it.
func (m *Manager) BannerError() *internal.AppError {
	return m.errorFlag.Get()
}

// Loading reports whether a bootstrap run is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}
