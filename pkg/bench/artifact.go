package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/benchwalk/pkg/gitenv"
)

// Sentinel errors for artifact resolution. Build failure and locate
// failure are distinct, separately reported outcome kinds.
var (
	ErrBuildFailed     = errors.New("build failed")
	ErrArtifactMissing = errors.New("artifact missing")
)

// Artifact is a runnable executable bound to exactly one historical point.
// Owned transiently by the resolver for the duration of one walk step.
type Artifact struct {
	// Path is the absolute executable path.
	Path string

	// Point is the identifier of the version the artifact corresponds to.
	Point string
}

// Resolver locates or produces the runnable artifact for a point.
// In locate-only mode it searches the release directory for a file named
// <prefix><point-id>*; in build mode it first builds the currently
// checked-out workspace content, then performs the same search with a
// fallback to the bare manifest binary name.
type Resolver struct {
	// Workspace is the engine repository root.
	Workspace string

	// ReleaseDir is the artifact search directory, relative to Workspace.
	ReleaseDir string

	// Prefix is prepended to the point identifier when matching file names.
	Prefix string

	// Build enables build-then-locate mode.
	Build bool

	// BuildCommand is the shell command that builds the workspace.
	BuildCommand string

	// BuildTimeout bounds one build invocation.
	BuildTimeout time.Duration
}

// Resolve returns the artifact for the given point. Errors wrap
// ErrBuildFailed or ErrArtifactMissing for outcome classification.
func (r *Resolver) Resolve(ctx context.Context, point gitenv.Point) (Artifact, error) {
	if r.Build {
		_, buildErr := runShell(ctx, r.Workspace, r.BuildCommand, r.BuildTimeout)
		if buildErr != nil {
			return Artifact{}, fmt.Errorf("%w: %v", ErrBuildFailed, buildErr)
		}
	}

	path, err := r.locate(point.ID())
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{Path: path, Point: point.ID()}, nil
}

// locate searches the release directory: prefix match on the point id
// first, then the bare manifest binary name (the freshly built artifact
// carries no point suffix).
func (r *Resolver) locate(pointID string) (string, error) {
	dir := filepath.Join(r.Workspace, r.ReleaseDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrArtifactMissing, dir, err)
	}

	want := r.Prefix + pointID

	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), want) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	name, manifestErr := ManifestBinaryName(r.Workspace)
	if manifestErr != nil {
		return "", fmt.Errorf("%w: no %s* in %s and %v", ErrArtifactMissing, want, dir, manifestErr)
	}

	bare := filepath.Join(dir, name)

	info, statErr := os.Stat(bare)
	if statErr != nil || info.IsDir() {
		return "", fmt.Errorf("%w: no %s* or %s in %s", ErrArtifactMissing, want, name, dir)
	}

	return bare, nil
}
