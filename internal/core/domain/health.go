package domain

// HealthStatus is the observed health of a container as reported by the
// runtime's health check. It is observed, never owned: the poller re-queries
// rather than caching transitions.
type HealthStatus int

const (
	// HealthUnknown covers the window between container creation and the
	// runtime populating health state, and any status string we do not
	// recognize. It is deliberately distinct from HealthUnhealthy: unknown
	// means "not yet observable", not "failing".
	HealthUnknown HealthStatus = iota
	HealthStarting
	HealthHealthy
	HealthUnhealthy
)

// ParseHealthStatus maps a runtime status string to a HealthStatus.
// Unrecognized or empty strings map to HealthUnknown.
func ParseHealthStatus(s string) HealthStatus {
	switch s {
	case "starting":
		return HealthStarting
	case "healthy":
		return HealthHealthy
	case "unhealthy":
		return HealthUnhealthy
	default:
		return HealthUnknown
	}
}

func (s HealthStatus) String() string {
	switch s {
	case HealthStarting:
		return "starting"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}
