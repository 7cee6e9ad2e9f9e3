package domain

import "errors"

// ErrRuntimeUnavailable is returned when the container runtime daemon cannot
// be reached at all.
var ErrRuntimeUnavailable = errors.New("container runtime is not available")

// ErrBuildFailed is returned when the image build exits with an error. Builds
// are never retried: the same inputs produce the same failure.
var ErrBuildFailed = errors.New("image build failed")

// ErrRunFailed is returned when a new container could not be created or
// started from the built image.
var ErrRunFailed = errors.New("container failed to start")

// ErrHealthTimeout is returned when the container never reported healthy
// within the bounded polling window. The container is left running for
// inspection.
var ErrHealthTimeout = errors.New("container did not become healthy in time")

// ErrNotFound is returned when a container or image the operation targets
// does not exist. Stop and clean treat it as a warning, not a failure.
var ErrNotFound = errors.New("not found")
