package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/skiff-deploy/skiff/internal/core/domain"
	"github.com/skiff-deploy/skiff/internal/core/ports"
)

const (
	healthPollInterval = 2 * time.Second
	healthPollAttempts = 30

	// Probe run inside the container by the runtime's health check. The nginx
	// image ships busybox wget, so a spider request is the cheapest GET.
	healthCheckCmd = "wget -q --spider http://localhost:8080/health || exit 1"
	healthRetries  = 3
)

// Deployer coordinates image building and container lifecycle for a single
// deployment target. Operations are strictly sequential; the only wait is the
// health poller's bounded timed retry. Use NewDeployer to create one.
type Deployer struct {
	target  domain.DeploymentTarget
	runtime ports.ContainerRuntime
	builder ports.ImageBuilder
	clock   ports.Clock
	out     io.Writer
}

// NewDeployer returns a Deployer operating on target through the given
// runtime and builder.
func NewDeployer(target domain.DeploymentTarget, runtime ports.ContainerRuntime, builder ports.ImageBuilder) *Deployer {
	return &Deployer{
		target:  target,
		runtime: runtime,
		builder: builder,
		clock:   ports.SystemClock{},
		out:     os.Stdout,
	}
}

// Build builds the deployment image tagged :latest. A build failure is
// terminal for the enclosing operation; builds are never retried.
func (d *Deployer) Build(ctx context.Context) error {
	log.Infof("building image %s from %s", d.target.ImageRef(), d.target.Source)
	if err := d.builder.BuildImage(ctx, d.target.Source, d.target.ImageRef()); err != nil {
		return err
	}
	log.Infof("image %s built", d.target.ImageRef())
	return nil
}

// Deploy runs the full sequence: build, remove any prior instance, start a
// fresh one, poll it to health, report. There is no rollback: once cleanup
// has removed the old instance, a failed run or health timeout leaves the
// service down or unhealthy for operator inspection.
func (d *Deployer) Deploy(ctx context.Context) (domain.Report, error) {
	if err := d.runtime.Ping(ctx); err != nil {
		return domain.Report{}, err
	}
	if err := d.Build(ctx); err != nil {
		return domain.Report{}, err
	}
	if err := d.cleanup(ctx); err != nil {
		return domain.Report{}, err
	}

	id, err := d.runtime.RunContainer(ctx, ports.RunSpec{
		Image:         d.target.ImageRef(),
		Name:          d.target.Container,
		HostPort:      d.target.HostPort,
		HealthCmd:     healthCheckCmd,
		HealthRetries: healthRetries,
	})
	if err != nil {
		return domain.Report{}, err
	}
	log.Infof("container %s started (%s)", d.target.Container, shortID(id))

	if err := d.waitHealthy(ctx); err != nil {
		return domain.Report{}, err
	}

	report := d.observe(ctx)
	d.printReport(report)
	return report, nil
}

// cleanup enforces the single-instance invariant before a run: stop the
// running instance if there is one, then remove whatever instance still
// exists in any state. The two queries are both always issued; a stop failure
// does not skip the removal attempt.
func (d *Deployer) cleanup(ctx context.Context) error {
	name := d.target.Container

	if _, err := d.runtime.FindContainer(ctx, name, false); err == nil {
		log.Infof("stopping running container %s", name)
		if err := d.runtime.StopContainer(ctx, name); err != nil {
			log.Warnf("stop %s: %v", name, err)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if _, err := d.runtime.FindContainer(ctx, name, true); err == nil {
		log.Infof("removing container %s", name)
		if err := d.runtime.RemoveContainer(ctx, name); err != nil {
			return fmt.Errorf("remove container %s: %w", name, err)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// waitHealthy polls the runtime's health assessment until it reports healthy,
// up to healthPollAttempts queries healthPollInterval apart. Query errors and
// unknown states count as "not yet healthy": the window between container
// creation and the runtime populating health state must not fail the deploy.
// The container is not torn down on timeout.
func (d *Deployer) waitHealthy(ctx context.Context) error {
	log.Infof("waiting for %s to report healthy", d.target.Container)
	for attempt := 1; attempt <= healthPollAttempts; attempt++ {
		status, err := d.runtime.Health(ctx, d.target.Container)
		if err == nil && status == domain.HealthHealthy {
			log.Infof("container %s is healthy after %d attempt(s)", d.target.Container, attempt)
			return nil
		}
		if attempt == healthPollAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.clock.After(healthPollInterval):
		}
	}
	return fmt.Errorf("%w: %s after %d attempts", domain.ErrHealthTimeout, d.target.Container, healthPollAttempts)
}

// Stop stops the running instance. Stopping an instance that is not running
// is a warning, not an error.
func (d *Deployer) Stop(ctx context.Context) error {
	name := d.target.Container
	if _, err := d.runtime.FindContainer(ctx, name, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warnf("container %s is not running", name)
			return nil
		}
		return err
	}
	if err := d.runtime.StopContainer(ctx, name); err != nil {
		return fmt.Errorf("stop %s: %w", name, err)
	}
	log.Infof("container %s stopped", name)
	return nil
}

// Logs streams the instance's log output. The caller owns the returned
// stream.
func (d *Deployer) Logs(ctx context.Context, follow bool) (io.ReadCloser, error) {
	return d.runtime.ContainerLogs(ctx, d.target.Container, follow)
}

// Clean removes the instance and the image. Either being already absent is a
// warning; the operation still completes.
func (d *Deployer) Clean(ctx context.Context) error {
	name := d.target.Container

	if _, err := d.runtime.FindContainer(ctx, name, true); err == nil {
		if _, rerr := d.runtime.FindContainer(ctx, name, false); rerr == nil {
			if serr := d.runtime.StopContainer(ctx, name); serr != nil {
				log.Warnf("stop %s: %v", name, serr)
			}
		}
		if err := d.runtime.RemoveContainer(ctx, name); err != nil {
			return fmt.Errorf("remove container %s: %w", name, err)
		}
		log.Infof("container %s removed", name)
	} else if errors.Is(err, domain.ErrNotFound) {
		log.Warnf("container %s does not exist, skipping", name)
	} else {
		return err
	}

	if err := d.runtime.RemoveImage(ctx, d.target.ImageRef()); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("remove image %s: %w", d.target.ImageRef(), err)
		}
		log.Warnf("image %s does not exist, skipping", d.target.ImageRef())
	} else {
		log.Infof("image %s removed", d.target.ImageRef())
	}

	log.Infof("clean complete for %s", d.target.Project)
	return nil
}

// Status returns the current observational report without mutating anything.
func (d *Deployer) Status(ctx context.Context) (domain.Report, error) {
	if err := d.runtime.Ping(ctx); err != nil {
		return domain.Report{}, err
	}
	return d.observe(ctx), nil
}

// observe assembles the report. Lookups that fail leave their field empty;
// reporting is purely informational and cannot fail an operation.
func (d *Deployer) observe(ctx context.Context) domain.Report {
	r := domain.Report{
		URL:       fmt.Sprintf("http://localhost:%d", d.target.HostPort),
		HealthURL: fmt.Sprintf("http://localhost:%d/health", d.target.HostPort),
		Container: d.target.Container,
		Image:     d.target.ImageRef(),
	}
	if c, err := d.runtime.FindContainer(ctx, d.target.Container, true); err == nil {
		r.Status = c.Status
	}
	if h, err := d.runtime.Health(ctx, d.target.Container); err == nil {
		r.Health = h.String()
	}
	return r
}

func (d *Deployer) printReport(r domain.Report) {
	fmt.Fprintf(d.out, "\n%s deployed\n", d.target.Project)
	fmt.Fprintf(d.out, "  url:        %s\n", r.URL)
	fmt.Fprintf(d.out, "  health:     %s\n", r.HealthURL)
	fmt.Fprintf(d.out, "  container:  %s\n", r.Container)
	fmt.Fprintf(d.out, "  image:      %s\n", r.Image)
	if r.Status != "" {
		fmt.Fprintf(d.out, "  status:     %s\n", r.Status)
	}
	if r.Health != "" {
		fmt.Fprintf(d.out, "  health now: %s\n", r.Health)
	}
	fmt.Fprintf(d.out, "\nfollow logs with: skiff logs\n")
}

// shortID trims a runtime container ID for log lines.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
