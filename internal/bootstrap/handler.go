package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/gestaolite/backoffice/internal"
	companyDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/company"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	"github.com/gestaolite/backoffice/internal/transport"
	"github.com/gestaolite/backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Manager:     manager,
	}
}

type stateResponse struct {
	Permissions permissionDatamodel.MenuPermissions `json:"permissions"`
	Companies   []companyDatamodel.Company          `json:"empresas"`
	CanClockIn  bool                                `json:"canClockIn"`
	Ready       bool                                `json:"ready"`
	Loading     bool                                `json:"loading"`
	Error       *internal.AppError                  `json:"error,omitempty"`
}

func (h *Handler) toResponse(state State) stateResponse {
	resp := stateResponse{
		Permissions: state.Permissions,
		CanClockIn:  state.CanClockIn,
		Ready:       state.Ready,
		Loading:     h.Manager.Loading(),
		Companies:   []companyDatamodel.Company{},
		Error:       h.Manager.BannerError(),
	}
	if state.Affiliations != nil {
		resp.Companies = state.Affiliations.Manageable(state.Permissions)
	}
	return resp
}

// Run executes the bootstrap sequence for the logged-in user. Called by the
// UI right after login and whenever permissions change.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	state := h.Manager.Run(r.Context())
	if state.User == nil {
		h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
		return
	}
	h.WriteJSON(w, http.StatusOK, h.toResponse(state))
}

// State returns the last committed application state without re-resolving.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.toResponse(h.Manager.State()))
}
