// Package errors provides the structured error type returned by the HTTP
// surface of sessionstream. An AppError carries a machine-readable code, a
// human-readable message, the HTTP status it maps to, and whether the caller
// may retry.
package errors
