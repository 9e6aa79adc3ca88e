package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed runtime piece.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information for the startup log.
type Description struct {
	// Name is the human-readable display name. Empty means Name() is used.
	Name string
	// Type categorizes the component: "server", "registry", "worker".
	Type string
	// Details is a one-liner shown in the startup summary.
	Details string
	// Port is the listening port, if any.
	Port int
}

// Describable is optionally implemented by components that want to appear
// in the startup summary with more than their name.
type Describable interface {
	Describe() Description
}

// Route describes one registered HTTP route.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is optionally implemented by components that serve HTTP
// routes, so the startup summary can list them.
type RouteProvider interface {
	Routes() []Route
}
