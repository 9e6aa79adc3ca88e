package errors

import "net/http"

// ErrorCode is the machine-readable code sent to clients.
type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeNotAcceptable      ErrorCode = "NOT_ACCEPTABLE"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeTooLarge           ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

type codeInfo struct {
	status    int
	retryable bool
}

var codes = map[ErrorCode]codeInfo{
	ErrCodeInvalidInput:       {http.StatusBadRequest, false},
	ErrCodeNotFound:           {http.StatusNotFound, false},
	ErrCodeNotAcceptable:      {http.StatusNotAcceptable, false},
	ErrCodeConflict:           {http.StatusConflict, false},
	ErrCodeTooLarge:           {http.StatusRequestEntityTooLarge, false},
	ErrCodeRateLimited:        {http.StatusTooManyRequests, true},
	ErrCodeInternal:           {http.StatusInternalServerError, false},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, true},
}

// IsRetryableCode reports whether a client may repeat a request that failed
// with code.
func IsRetryableCode(code ErrorCode) bool {
	return codes[code].retryable
}

// StatusFor returns the HTTP status paired with code, or 500 for unknown
// codes.
func StatusFor(code ErrorCode) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
