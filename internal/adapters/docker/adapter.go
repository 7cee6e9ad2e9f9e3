package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/skiff-deploy/skiff/internal/core/domain"
	"github.com/skiff-deploy/skiff/internal/core/ports"
)

// Runtime-managed health check cadence. The probe command itself comes from
// the caller via RunSpec.
const (
	healthInterval = 30 * time.Second
	healthTimeout  = 10 * time.Second
	stopTimeout    = 10 * time.Second
)

// Adapter implements ports.ContainerRuntime using the Docker SDK.
type Adapter struct {
	cli *client.Client
}

// NewAdapter creates a new Docker adapter instance from the environment
// (DOCKER_HOST etc.), negotiating the API version with the daemon.
func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// Ping verifies the daemon is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	if _, err := a.cli.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRuntimeUnavailable, err)
	}
	return nil
}

// FindContainer looks up a container by exact name. The name filter matches
// substrings, so the returned names are checked for equality.
func (a *Adapter) FindContainer(ctx context.Context, name string, all bool) (domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     all,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return domain.Container{}, fmt.Errorf("failed to list containers: %w", err)
	}

	for _, c := range containers {
		for _, n := range c.Names {
			if n == "/"+name {
				return domain.Container{
					ID:     shortID(c.ID),
					Name:   name,
					Image:  c.Image,
					Status: c.Status,
					State:  c.State,
				}, nil
			}
		}
	}
	return domain.Container{}, fmt.Errorf("container %s: %w", name, domain.ErrNotFound)
}

// StopContainer stops a running container by name.
func (a *Adapter) StopContainer(ctx context.Context, name string) error {
	secs := int(stopTimeout.Seconds())
	return a.cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &secs})
}

// RemoveContainer removes a container by name, even if it is stopped.
func (a *Adapter) RemoveContainer(ctx context.Context, name string) error {
	err := a.cli.ContainerRemove(ctx, name, types.ContainerRemoveOptions{Force: true})
	if client.IsErrNotFound(err) {
		return fmt.Errorf("container %s: %w", name, domain.ErrNotFound)
	}
	return err
}

// RunContainer creates and starts a detached container per spec: restart
// unless stopped, the container port published on the host, and a
// runtime-managed health check probing the spec's command.
func (a *Adapter) RunContainer(ctx context.Context, spec ports.RunSpec) (string, error) {
	config, hostConfig := runConfig(spec)

	resp, err := a.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("%w: create: %v", domain.ErrRunFailed, err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("%w: start: %v", domain.ErrRunFailed, err)
	}
	return resp.ID, nil
}

// runConfig translates a RunSpec into the SDK's container and host configs.
func runConfig(spec ports.RunSpec) (*container.Config, *container.HostConfig) {
	port := nat.Port(fmt.Sprintf("%d/tcp", domain.ContainerPort))

	config := &container.Config{
		Image:        spec.Image,
		ExposedPorts: nat.PortSet{port: struct{}{}},
		Healthcheck: &container.HealthConfig{
			Test:     []string{"CMD-SHELL", spec.HealthCmd},
			Interval: healthInterval,
			Timeout:  healthTimeout,
			Retries:  spec.HealthRetries,
		},
	}
	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(spec.HostPort)}},
		},
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
	}
	return config, hostConfig
}

// Health reports the runtime's health assessment of the named container.
// A container without health state yet reports HealthUnknown.
func (a *Adapter) Health(ctx context.Context, name string) (domain.HealthStatus, error) {
	resp, err := a.cli.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return domain.HealthUnknown, fmt.Errorf("container %s: %w", name, domain.ErrNotFound)
		}
		return domain.HealthUnknown, fmt.Errorf("failed to inspect container: %w", err)
	}
	if resp.State == nil || resp.State.Health == nil {
		return domain.HealthUnknown, nil
	}
	return domain.ParseHealthStatus(resp.State.Health.Status), nil
}

// ContainerLogs returns a stream of container logs. The daemon multiplexes
// stdout and stderr into one stream; it is demuxed here so callers get plain
// text.
func (a *Adapter) ContainerLogs(ctx context.Context, name string, follow bool) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     follow,
		Timestamps: true,
	}
	logs, err := a.cli.ContainerLogs(ctx, name, options)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, fmt.Errorf("container %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get container logs: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, logs)
		logs.Close()
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// RemoveImage deletes the named image.
func (a *Adapter) RemoveImage(ctx context.Context, ref string) error {
	_, err := a.cli.ImageRemove(ctx, ref, types.ImageRemoveOptions{})
	if client.IsErrNotFound(err) {
		return fmt.Errorf("image %s: %w", ref, domain.ErrNotFound)
	}
	return err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
