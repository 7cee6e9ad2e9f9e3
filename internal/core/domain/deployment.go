package domain

// ContainerPort is the fixed port the served artifact listens on inside the
// container. The host side is configurable; this side is not.
const ContainerPort = 8080

// DeploymentTarget identifies the logical deployment. It is built once at
// startup and never mutated afterwards; every component receives it by value.
type DeploymentTarget struct {
	Project   string // logical project name, used in log lines and reports
	Image     string // image name, always tagged :latest
	Container string // container name, the tool assumes exclusive control of it
	HostPort  int    // host port mapped to ContainerPort
	Source    string // build context: a local directory or a git URL
}

// ImageRef returns the full image reference the deployment runs from.
func (t DeploymentTarget) ImageRef() string {
	return t.Image + ":latest"
}

// Container is a point-in-time observation of a runtime container. The tool
// never holds a live handle; it re-queries by name whenever it needs state.
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
	State  string `json:"state"` // running, exited, etc.
}
