// Package sse streams a session's events to its client as Server-Sent
// Events.
//
// A Dispatcher serves one connection for one session. It drains the
// session's queue, writing each event as a data frame, and writes a
// keep-alive comment whenever the queue stays empty for a full wait window.
// The stream ends on the completion event, on client disconnect, or when the
// session disappears, and in every case the session is removed from the
// registry on the way out.
//
// Reader parses the same wire format and is used by clients and tests.
package sse
