// Package session holds the per-client state of the streaming service: the
// Registry that maps session ids to live sessions, the Session itself, and
// the unbounded FIFO Queue that buffers a session's events until its single
// stream drains them.
//
// The Registry map is the only structure shared between goroutines of
// different sessions and is guarded by one RWMutex. A session's Queue has
// exactly one writer (its producer) and at most one reader (its stream).
package session
