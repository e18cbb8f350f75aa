package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gestaolite/backoffice/internal"
	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
)

// SessionSource is what the client needs to know about the current session:
// who is logged in (nil when nobody is) and the session scope context, which
// is cancelled at logout so in-flight responses cannot mutate a dead session.
type SessionSource interface {
	CurrentUser() *userDatamodel.User
	Scope() context.Context
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// Client is the single path to the business API. Every request requires an
// active session, disables HTTP caching and normalizes failures into AppError
// values; callers never see raw transport errors.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	sessions   SessionSource
	errorFlag  *ErrorFlag
	logger     *slog.Logger
}

func NewClient(config Config, sessions SessionSource, flag *ErrorFlag, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		errorFlag:  flag,
		logger:     logger,
	}
}

// ErrorFlag exposes the banner state to the transport layer.
func (c *Client) ErrorFlag() *ErrorFlag {
	return c.errorFlag
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	current := c.sessions.CurrentUser()
	if !current.IsValid() {
		// Fail fast: no network round-trip without a session.
		return internal.ErrNotLoggedIn
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return internal.NewInternalError("failed to marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	scope := c.sessions.Scope()
	if scope == nil {
		scope = context.Background()
	}
	reqCtx, cancel := mergeContexts(ctx, scope, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, method, reqURL, reqBody)
	if err != nil {
		return internal.NewInternalError("failed to create HTTP request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		appErr := internal.NewNetworkError(err)
		if c.errorFlag.Set(appErr) {
			c.logger.Error("backend unreachable", "method", method, "path", path, "error", err)
		} else {
			// first error wins; this one is swallowed from the banner
			c.logger.Debug("backend unreachable, banner already set", "method", method, "path", path, "error", err)
		}
		return appErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Error("unexpected response shape", "method", method, "path", path, "error", err)
			return internal.NewInternalError(fmt.Sprintf("unexpected response from %s %s", method, path), err)
		}
	}

	return nil
}

// errorFromResponse turns a non-2xx response into an AppError. A 404 is an
// expected absence signal for every optional per-user resource and never
// reaches the global banner.
func (c *Client) errorFromResponse(method, path string, resp *http.Response) error {
	message := parseErrorBody(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		if message == "" {
			message = fmt.Sprintf("O servidor respondeu com HTTP %d.", resp.StatusCode)
		}
		return internal.NewNotFoundError(message, internal.ErrCodeBackendStatus)
	}

	appErr := internal.NewBackendError(resp.StatusCode, message)
	c.errorFlag.Set(appErr)
	c.logger.Warn("backend error response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"message", appErr.Message)
	return appErr
}

// parseErrorBody pulls a server-supplied message out of a JSON error body.
// Returns "" when the body is not parseable or carries no message.
func parseErrorBody(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// mergeContexts derives a request context that honors both the caller's
// context and the session scope, capped by the request timeout. Cancelling
// either parent cancels the request.
func mergeContexts(ctx, scope context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithTimeout(ctx, timeout)

	stop := context.AfterFunc(scope, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
