package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gestaolite/backoffice/internal/cache"
	"github.com/gestaolite/backoffice/internal/session"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

type HealthHandler struct {
	store          *session.Store
	cache          *cache.Client
	backendBaseURL string
	httpClient     *http.Client
}

func NewHealthHandler(store *session.Store, cacheClient *cache.Client, backendBaseURL string) *HealthHandler {
	return &HealthHandler{
		store:          store,
		cache:          cacheClient,
		backendBaseURL: backendBaseURL,
		httpClient:     &http.Client{Timeout: 2 * time.Second},
	}
}

// pingHandler → just says service is up
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) check(name string, fn func(context.Context) error, ctx context.Context) CheckEntry {
	start := time.Now()
	err := fn(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}

func (h *HealthHandler) pingBackend(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.backendBaseURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// healthCheckHandler → checks the session store, the remote business API and
// the optional permission cache. The cache being disabled does not count
// against readiness.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{
		"session_store": h.check("session_store", h.store.Ping, ctx),
		"backend":       h.check("backend", h.pingBackend, ctx),
	}
	if h.cache != nil {
		components["cache"] = h.check("cache", h.cache.Ping, ctx)
	}

	overall := HealthHealthy
	for _, entry := range components {
		if entry.Status == HealthUnhealthy {
			overall = HealthUnhealthy
			break
		}
	}

	resp := HealthResponse{
		Status:     overall,
		CheckedAt:  time.Now(),
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
