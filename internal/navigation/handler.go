package navigation

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gestaolite/backoffice/internal/transport"
	"github.com/gestaolite/backoffice/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Controller *Controller
}

func NewHandler(controller *Controller) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Controller:  controller,
	}
}

type menuResponse struct {
	Active      ActivePage `json:"active"`
	Visible     ActivePage `json:"visible"`
	SidebarOpen bool       `json:"sidebarOpen"`
	Items       []MenuItem `json:"items"`
}

func (h *Handler) menuState() menuResponse {
	return menuResponse{
		Active:      h.Controller.Active(),
		Visible:     h.Controller.Visible(),
		SidebarOpen: h.Controller.SidebarOpen(),
		Items:       h.Controller.Menu(),
	}
}

func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.menuState())
}

// OpenSidebar opens the mobile sidebar overlay. Closing happens implicitly
// on navigation.
func (h *Handler) OpenSidebar(w http.ResponseWriter, r *http.Request) {
	h.Controller.OpenSidebar()
	h.WriteJSON(w, http.StatusOK, h.menuState())
}

type navigateRequest struct {
	Page ActivePage `json:"page"`
}

// Navigate moves the active page. Unknown pages are rejected; known but
// unreachable pages are accepted and simply render as home.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !IsKnown(req.Page) {
		h.WriteError(w, http.StatusBadRequest, "unknown page")
		return
	}

	h.Controller.Navigate(req.Page)
	h.WriteJSON(w, http.StatusOK, h.menuState())
}
