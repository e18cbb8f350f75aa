package session

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/core/datamodel/worksession"
	"github.com/gestaolite/backoffice/internal/transport"
	"github.com/gestaolite/backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Error("login failed", "error", err)

		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteAppError(w, appErr)
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, LoginResponse{User: u, AccessToken: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(); err != nil {
		h.Logger.Error("logout failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := h.Service.CurrentUser()
	if !u.IsValid() {
		h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) GetWorkSession(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Service.WorkSession()
	if err != nil {
		h.Logger.Error("failed to load work session", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if ws == nil {
		h.WriteError(w, http.StatusNotFound, "nenhum registro de ponto em aberto")
		return
	}
	h.WriteJSON(w, http.StatusOK, ws)
}

func (h *Handler) StartWorkSession(w http.ResponseWriter, r *http.Request) {
	var ws worksession.WorkSession
	if err := json.NewDecoder(r.Body).Decode(&ws); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ws.StartedAt.IsZero() {
		ws.StartedAt = time.Now()
	}
	if err := h.Service.StartWorkSession(&ws); err != nil {
		h.Logger.Error("failed to save work session", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.WriteJSON(w, http.StatusCreated, ws)
}

func (h *Handler) EndWorkSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.EndWorkSession(); err != nil {
		h.Logger.Error("failed to clear work session", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware restores the session for a request: the bearer token must be
// valid and must belong to the identity currently held by the session store.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err)
			h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
			return
		}

		current := h.Service.CurrentUser()
		if !current.IsValid() || current.Phone != claims.Phone {
			h.WriteError(w, http.StatusUnauthorized, internal.MsgNotLoggedIn)
			return
		}

		ctx := internal.ContextWithUserPhone(r.Context(), claims.Phone)
		ctx = logger.With(ctx, "phone", claims.Phone)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
