package ports

import (
	"context"
	"io"

	"github.com/skiff-deploy/skiff/internal/core/domain"
)

// RunSpec describes the container the lifecycle manager launches. All fields
// beyond the names are fixed policy for this deployment style: detached,
// restart unless stopped, one published port, runtime-managed health check.
type RunSpec struct {
	Image         string // full image reference, e.g. "web:latest"
	Name          string // container name
	HostPort      int    // published host port, mapped to domain.ContainerPort
	HealthCmd     string // shell command the runtime runs to probe health
	HealthRetries int
}

// ContainerRuntime defines the operations the core consumes from the
// container runtime. This interface allows us to switch between Docker,
// Podman, or Kubernetes without changing the deployment logic, and lets
// tests substitute a recording fake.
type ContainerRuntime interface {
	// Ping verifies the runtime daemon is reachable. Returns
	// domain.ErrRuntimeUnavailable (wrapped) when it is not.
	Ping(ctx context.Context) error

	// FindContainer looks up a container by exact name. With all=false only
	// running containers are considered. Returns domain.ErrNotFound when no
	// container matches.
	FindContainer(ctx context.Context, name string, all bool) (domain.Container, error)

	// StopContainer stops a running container by name.
	StopContainer(ctx context.Context, name string) error

	// RemoveContainer removes a container by name, regardless of state.
	RemoveContainer(ctx context.Context, name string) error

	// RunContainer creates and starts a container per spec and returns its ID.
	RunContainer(ctx context.Context, spec RunSpec) (string, error)

	// Health reports the runtime's current health assessment of the named
	// container. A container without populated health state reports
	// domain.HealthUnknown.
	Health(ctx context.Context, name string) (domain.HealthStatus, error)

	// ContainerLogs streams the container's log output. With follow=true the
	// stream stays open until the container exits or ctx is cancelled.
	ContainerLogs(ctx context.Context, name string, follow bool) (io.ReadCloser, error)

	// RemoveImage deletes the named image. Returns domain.ErrNotFound
	// (wrapped) when the image does not exist.
	RemoveImage(ctx context.Context, ref string) error
}
