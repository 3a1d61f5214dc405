// Package apperror defines the typed errors shared by the service,
// repository and handler layers. Handlers map these to HTTP statuses in
// one place instead of each call site picking its own code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCode      = errors.New("missing authorization code")
	ErrTokenExchange    = errors.New("token exchange failed")
	ErrIdentityFetch    = errors.New("identity fetch failed")
	ErrProviderAPI      = errors.New("provider api failure")
	ErrSchemaValidation = errors.New("schema validation failed")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("conflict")
	ErrStore            = errors.New("store failure")
)

type AppError struct {
	Err     error  // sentinel classifying the error
	Message string // Human-readable error message
	Cause   error  // Optional: underlying error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func MissingCode() *AppError {
	return &AppError{
		Err:     ErrMissingCode,
		Message: "authorization code not provided",
	}
}

func TokenExchange(cause error) *AppError {
	return &AppError{
		Err:     ErrTokenExchange,
		Message: "failed to exchange authorization code for access token",
		Cause:   cause,
	}
}

func IdentityFetch(cause error) *AppError {
	return &AppError{
		Err:     ErrIdentityFetch,
		Message: "failed to fetch authenticated identity",
		Cause:   cause,
	}
}

// ProviderAPI wraps a non-success response from the repository provider.
// The cause carries the provider's error payload for logs, never for clients.
func ProviderAPI(operation string, cause error) *AppError {
	return &AppError{
		Err:     ErrProviderAPI,
		Message: fmt.Sprintf("provider request failed: %s", operation),
		Cause:   cause,
	}
}

func SchemaValidation(field string) *AppError {
	return &AppError{
		Err:     ErrSchemaValidation,
		Message: fmt.Sprintf("provider payload missing required field %q", field),
	}
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

func Store(cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: "store operation failed",
		Cause:   cause,
	}
}
