// Package logger provides structured logging for sessionstream using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("sse")
//	log.Info("stream closed", logger.Fields("session_id", id))
package logger
