// Package resilience provides load-shedding primitives.
//
// Bulkhead caps how many long-lived calls run at once, e.g. open event
// streams, so a burst of clients cannot exhaust the process:
//
//	streams := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "streams", MaxConcurrent: 1000})
//	release, err := streams.Acquire(ctx)
//	if errors.Is(err, resilience.ErrBulkheadFull) {
//	    // shed the request
//	}
//	defer release()
package resilience
