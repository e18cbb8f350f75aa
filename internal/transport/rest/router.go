package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/gestaolite/backoffice/internal/bootstrap"
	"github.com/gestaolite/backoffice/internal/cache"
	"github.com/gestaolite/backoffice/internal/company"
	permissionDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/permission"
	"github.com/gestaolite/backoffice/internal/modules"
	"github.com/gestaolite/backoffice/internal/navigation"
	"github.com/gestaolite/backoffice/internal/permission"
	"github.com/gestaolite/backoffice/internal/session"
	"github.com/gestaolite/backoffice/internal/transport/middleware"
	"github.com/gestaolite/backoffice/internal/transport/swagger"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Session    *session.Handler
	Permission *permission.Handler
	Company    *company.Handler
	Navigation *navigation.Handler
	Bootstrap  *bootstrap.Handler
	Modules    *modules.Proxy
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, manager *bootstrap.Manager, store *session.Store, cacheClient *cache.Client, backendBaseURL, corsOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(store, cacheClient, backendBaseURL)

	// Apply global middleware
	router.Use(middleware.CORS(corsOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Session.Login)
			sr.Post("/logout", h.Session.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Session.AuthMiddleware)

			// Current user
			pr.Get("/users/me", h.Session.Me)

			// Bootstrap sequence
			pr.Post("/bootstrap", h.Bootstrap.Run)
			pr.Get("/bootstrap", h.Bootstrap.State)

			// Sidebar and navigation
			pr.Get("/menu", h.Navigation.Menu)
			pr.Post("/navigate", h.Navigation.Navigate)
			pr.Post("/sidebar/open", h.Navigation.OpenSidebar)

			// Permission routes
			pr.Get("/permissions/me", h.Permission.Me)
			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireFlag(manager, func(p permissionDatamodel.MenuPermissions) bool {
					return p.Configuracoes
				}))
				ar.Patch("/permissions/{phone}", h.Permission.Grant)
			})

			// Company routes
			pr.Route("/companies", func(cr chi.Router) {
				cr.Get("/", h.Company.Manageable)
				cr.Post("/", h.Company.Create)
				cr.Get("/approvable", h.Company.Approvable)
			})

			// Work session (ponto)
			pr.Route("/session/work", func(wr chi.Router) {
				wr.Get("/", h.Session.GetWorkSession)
				wr.Put("/", h.Session.StartWorkSession)
				wr.Delete("/", h.Session.EndWorkSession)
			})

			// Permission-gated feature module proxy
			pr.HandleFunc("/modules/{page}", h.Modules.Handle)
			pr.HandleFunc("/modules/{page}/*", h.Modules.Handle)
		})
	})
}
