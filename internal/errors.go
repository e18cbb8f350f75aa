package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeNetwork      ErrorType = "NETWORK_ERROR"
	ErrorTypeBackend      ErrorType = "BACKEND_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPhone     ErrorCode = "INVALID_PHONE"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"

	ErrCodeNotLoggedIn       ErrorCode = "NOT_LOGGED_IN"
	ErrCodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired      ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSessionCorrupted  ErrorCode = "SESSION_CORRUPTED"
	ErrCodeConnectionFailure ErrorCode = "CONNECTION_FAILURE"
	ErrCodeBackendStatus     ErrorCode = "BACKEND_STATUS"

	ErrCodePermissionsNotFound ErrorCode = "PERMISSIONS_NOT_FOUND"
	ErrCodeCompanyNotFound     ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeLinkNotFound        ErrorCode = "LINK_NOT_FOUND"
	ErrCodePageNotAllowed      ErrorCode = "PAGE_NOT_ALLOWED"
)

// User-facing messages stay in Portuguese, matching the product language.
const (
	MsgNotLoggedIn       = "Usuário não está logado."
	MsgConnectionFailure = "Falha de conexão com o servidor. Verifique sua internet e tente novamente."
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNetworkError wraps a transport-level failure (no response received).
// The message shown to users is always the same, regardless of cause.
func NewNetworkError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Code:       ErrCodeConnectionFailure,
		Message:    MsgConnectionFailure,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewBackendError represents a non-2xx response from the business API.
func NewBackendError(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("O servidor respondeu com HTTP %d.", status)
	}
	return &AppError{
		Type:       ErrorTypeBackend,
		Code:       ErrCodeBackendStatus,
		Message:    message,
		StatusCode: status,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrNotLoggedIn = NewUnauthorizedError(MsgNotLoggedIn, ErrCodeNotLoggedIn)

	ErrInvalidToken = NewUnauthorizedError("Token inválido.", ErrCodeInvalidToken)
	ErrTokenExpired = NewUnauthorizedError("Sessão expirada. Faça login novamente.", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404-class absence. Callers that query
// optional per-user state (permissions, company link, owned companies) treat
// this as a valid empty result, never as a failure.
func IsNotFound(err error) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type == ErrorTypeNotFound || appErr.StatusCode == http.StatusNotFound
	}
	return false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}
