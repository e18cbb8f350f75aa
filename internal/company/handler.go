package company

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gestaolite/backoffice/internal"
	companyDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/company"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/transport"
	"github.com/gestaolite/backoffice/pkg/logger"
)

type PermissionSource interface {
	FetchUserPermissions(ctx context.Context, phone string) (permissionDatamodel.MenuPermissions, error)
}

type SessionSource interface {
	CurrentUser() *userDatamodel.User
}

type Handler struct {
	*transport.BaseHandler
	Resolver    *Resolver
	Permissions PermissionSource
	Sessions    SessionSource
}

func NewHandler(resolver *Resolver, permissions PermissionSource, sessions SessionSource) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Resolver:    resolver,
		Permissions: permissions,
		Sessions:    sessions,
	}
}

type companyListResponse struct {
	Empresas []companyDatamodel.Company `json:"empresas"`
}

// Manageable lists the companies the current user can administrate.
func (h *Handler) Manageable(w http.ResponseWriter, r *http.Request) {
	h.listView(w, r, func(a *Affiliations, perms permissionDatamodel.MenuPermissions) []companyDatamodel.Company {
		return a.Manageable(perms)
	})
}

// Approvable lists the companies the current user can approve timesheets for.
func (h *Handler) Approvable(w http.ResponseWriter, r *http.Request) {
	h.listView(w, r, func(a *Affiliations, perms permissionDatamodel.MenuPermissions) []companyDatamodel.Company {
		return a.Approvable(perms)
	})
}

func (h *Handler) listView(w http.ResponseWriter, r *http.Request, view func(*Affiliations, permissionDatamodel.MenuPermissions) []companyDatamodel.Company) {
	u := h.Sessions.CurrentUser()
	if !u.IsValid() {
		h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
		return
	}

	perms, err := h.Permissions.FetchUserPermissions(r.Context(), u.Phone)
	if err != nil {
		h.writeResolverError(w, err)
		return
	}

	affiliations, err := h.Resolver.Refresh(r.Context(), u)
	if err != nil {
		h.writeResolverError(w, err)
		return
	}

	companies := view(affiliations, perms)
	if companies == nil {
		companies = []companyDatamodel.Company{}
	}
	h.WriteJSON(w, http.StatusOK, companyListResponse{Empresas: companies})
}

type createCompanyDTO struct {
	Name string `json:"nome"`
}

// Create registers a new company and answers with the refreshed manageable
// list, so the caller immediately sees the new entry.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	u := h.Sessions.CurrentUser()
	if !u.IsValid() {
		h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
		return
	}

	var dto createCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.Name == "" {
		h.WriteError(w, http.StatusBadRequest, "nome is required")
		return
	}

	if _, err := h.Resolver.Create(r.Context(), dto.Name, u); err != nil {
		h.writeResolverError(w, err)
		return
	}

	perms, err := h.Permissions.FetchUserPermissions(r.Context(), u.Phone)
	if err != nil {
		h.writeResolverError(w, err)
		return
	}

	affiliations, err := h.Resolver.Refresh(r.Context(), u)
	if err != nil {
		h.writeResolverError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, companyListResponse{Empresas: affiliations.Manageable(perms)})
}

func (h *Handler) writeResolverError(w http.ResponseWriter, err error) {
	h.Logger.Error("company resolution failed", "error", err)
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
