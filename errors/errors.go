package errors

import "fmt"

// AppError is the error type handlers return to the HTTP layer. It carries
// everything needed to render the JSON error envelope.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause records the underlying error and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail adds one entry to Details and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New builds an AppError. Retryable follows from the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

func newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...), StatusFor(code))
}

// ServiceUnavailable reports that service cannot take work right now.
func ServiceUnavailable(service string) *AppError {
	return newf(ErrCodeServiceUnavailable, "The %s is temporarily unavailable. Please try again.", service).
		WithDetail("service", service)
}

// NotFound reports an unknown resource. An empty id is left out of Details.
func NotFound(resource, id string) *AppError {
	e := newf(ErrCodeNotFound, "The requested %s was not found.", resource).WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Conflict reports a request that clashes with current state.
func Conflict(reason string) *AppError {
	return newf(ErrCodeConflict, "%s", reason)
}

// InvalidInput reports a body that could not be decoded.
func InvalidInput(field, reason string) *AppError {
	e := newf(ErrCodeInvalidInput, "Invalid input: %s", reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports fields that decoded but failed their rules.
func Validation(message string) *AppError {
	return newf(ErrCodeInvalidInput, "%s", message)
}

// NotAcceptable reports an Accept header that rules out every media type
// the endpoint produces.
func NotAcceptable(offered string) *AppError {
	return newf(ErrCodeNotAcceptable, "This endpoint only produces %s.", offered).WithDetail("offered", offered)
}

// PayloadTooLarge reports a body over limit bytes.
func PayloadTooLarge(limit int64) *AppError {
	return newf(ErrCodeTooLarge, "Request body exceeds %d bytes.", limit).WithDetail("limit", limit)
}

func RateLimited() *AppError {
	return newf(ErrCodeRateLimited, "Rate limit exceeded")
}

// Internal hides cause from the client but keeps it for logging.
func Internal(cause error) *AppError {
	return newf(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.").WithCause(cause)
}
