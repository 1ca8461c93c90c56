// Package apperror defines the typed errors the service layer returns.
//
// Services never talk HTTP. They return one of these errors and the handler
// layer maps the sentinel inside it to a status code (see handler/response.go).
//
//	service:  return apperror.ValidationFailed("message", "Message must be at least 10 characters")
//	handler:  errors.Is(err, apperror.ErrValidation) → 400 {"error":"validation_error",...,"field":"message"}
//
// Anything that is not an *AppError is treated as an internal failure.
package apperror

import "errors"

// Sentinels. Exactly one sits inside every AppError.
//
// There is no not-found kind: a missing user reads as (nil, nil) and hiding
// an unknown kudo is a no-op. Nor is there a forbidden kind, since any
// signed-in user may moderate.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError is a domain error with a message safe to show the client.
type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // shown to the client as-is
	Field   string // JSON property at fault, for validation errors
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// As finds the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ValidationFailed reports bad client input. field names the JSON property
// at fault so the client can highlight it; it may be empty.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized means no verified caller identity was available.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
