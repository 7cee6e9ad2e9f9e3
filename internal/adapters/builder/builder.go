package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	git "github.com/go-git/go-git/v5"
	log "github.com/sirupsen/logrus"

	"github.com/skiff-deploy/skiff/internal/core/domain"
)

// Adapter implements ports.ImageBuilder using the Docker SDK. The build
// source is either a local directory containing a Dockerfile or a git URL,
// which is shallow-cloned into a temporary directory first.
type Adapter struct {
	cli *client.Client
}

func NewAdapter() (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// BuildImage builds an image tagged imageRef from source. Any failure wraps
// domain.ErrBuildFailed; the caller never retries a build.
func (a *Adapter) BuildImage(ctx context.Context, source string, imageRef string) error {
	dir := source
	if isGitURL(source) {
		tmpDir, err := os.MkdirTemp("", "skiff-build-*")
		if err != nil {
			return fmt.Errorf("%w: create temp dir: %v", domain.ErrBuildFailed, err)
		}
		defer os.RemoveAll(tmpDir)

		log.Infof("cloning %s", source)
		_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
			URL:   source,
			Depth: 1, // shallow clone, only the build context matters
		})
		if err != nil {
			return fmt.Errorf("%w: clone %s: %v", domain.ErrBuildFailed, source, err)
		}
		dir = tmpDir
	}

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: build context %s: %v", domain.ErrBuildFailed, dir, err)
	}

	tar, err := archive.TarWithOptions(dir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("%w: create build context: %v", domain.ErrBuildFailed, err)
	}

	resp, err := a.cli.ImageBuild(ctx, tar, types.ImageBuildOptions{
		Tags:       []string{imageRef},
		Dockerfile: "Dockerfile",
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBuildFailed, err)
	}
	defer resp.Body.Close()

	// The build runs as the daemon streams its progress; the body must be
	// drained for the build to finish.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("%w: read build output: %v", domain.ErrBuildFailed, err)
	}
	return nil
}

// isGitURL reports whether source should be cloned rather than used as a
// local directory.
func isGitURL(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "git@") ||
		strings.HasSuffix(source, ".git")
}
