package ports

import "context"

// ImageBuilder defines the operation for building the deployment's container
// image from a build source.
type ImageBuilder interface {
	// BuildImage builds an image tagged imageRef from source, which is either
	// a local directory containing a Dockerfile or a git URL to clone.
	// Returns domain.ErrBuildFailed (wrapped) on any build error; builds are
	// never retried.
	BuildImage(ctx context.Context, source string, imageRef string) error
}
