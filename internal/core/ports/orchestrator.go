package ports

import (
	"context"
	"io"

	"github.com/skiff-deploy/skiff/internal/core/domain"
)

// Orchestrator is the deployment surface the control API exposes. The core
// service implements it; the HTTP adapter consumes it.
type Orchestrator interface {
	Deploy(ctx context.Context) (domain.Report, error)
	Status(ctx context.Context) (domain.Report, error)
	Stop(ctx context.Context) error
	Logs(ctx context.Context, follow bool) (io.ReadCloser, error)
}
