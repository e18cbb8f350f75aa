package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/bootstrap"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
)

// AppStateSource exposes the last committed application state.
type AppStateSource interface {
	State() bootstrap.State
}

// RequireFlag gates a route on one of the menu permission flags from the
// bootstrapped state. Callers without a session get 401; callers whose
// flag is off get 403.
func RequireFlag(state AppStateSource, check func(permissionDatamodel.MenuPermissions) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := state.State()
			if current.User == nil {
				http.Error(w, internal.MsgNotLoggedIn, http.StatusUnauthorized)
				return
			}

			if !check(current.Permissions) {
				slog.Warn("access denied: flag is off",
					"phone", current.User.Phone,
					"path", r.URL.Path)
				http.Error(w, "Acesso negado: permissão insuficiente.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
