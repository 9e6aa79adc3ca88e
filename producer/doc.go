// Package producer runs the background task that fills a session's queue:
// a fixed number of timestamped updates spaced by an interval, followed by
// one completion event.
//
// A producer outlives the request that scheduled it and is independent of
// whether a stream is attached. It stops early only when its session leaves
// the registry or when the Producer component is stopped.
package producer
