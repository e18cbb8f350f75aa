package permission

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/transport"
	"github.com/gestaolite/backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Resolver:    resolver,
	}
}

// Me resolves the flag set for the request's session identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	phone := internal.UserPhoneFromContext(r.Context())
	if phone == "" {
		h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
		return
	}

	mapped, err := h.Resolver.FetchUserPermissions(r.Context(), phone)
	if err != nil {
		h.Logger.Error("permission resolution failed", "phone", phone, "error", err)
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteAppError(w, appErr)
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, mapped)
}

type grantRequest struct {
	Permissions []string `json:"permissions"`
}

// Grant replaces another user's permission record. Routed behind the
// configuracoes flag.
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if phone == "" {
		h.WriteError(w, http.StatusBadRequest, "phone is required")
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Resolver.Grant(r.Context(), phone, req.Permissions); err != nil {
		h.Logger.Error("permission grant failed", "phone", phone, "error", err)
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteAppError(w, appErr)
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
