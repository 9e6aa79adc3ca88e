// Package api exposes the session endpoints:
//
//	POST /submit               create a session for a username, start its producer
//	GET  /stream/:session_id   stream the session's events as text/event-stream
//	GET  /                     demo page driving both
package api
