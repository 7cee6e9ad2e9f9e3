package domain

// Report is the observational summary printed after a successful deploy and
// returned by the status endpoint. Building it never mutates runtime state.
type Report struct {
	URL       string `json:"url"`
	HealthURL string `json:"health_url"`
	Container string `json:"container"`
	Image     string `json:"image"`
	Status    string `json:"status"` // runtime status line, e.g. "Up 5 seconds (healthy)"
	Health    string `json:"health"` // health check verdict: starting, healthy, ...
}
