package bench_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
	"github.com/Sumatoshi-tech/benchwalk/pkg/gitenv"
)

// newWorkspace lays out an engine repository skeleton with a release dir.
func newWorkspace(t *testing.T) (workspace, releaseDir string) {
	t.Helper()

	workspace = t.TempDir()
	releaseDir = filepath.Join(workspace, "target", "release")

	err := os.MkdirAll(releaseDir, 0o755)
	require.NoError(t, err)

	return workspace, releaseDir
}

func writeBinary(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755)
	require.NoError(t, err)

	return path
}

func TestResolveLocatesPrefixedBinary(t *testing.T) {
	workspace, releaseDir := newWorkspace(t)
	want := writeBinary(t, releaseDir, "prokopakop-9119428")
	writeBinary(t, releaseDir, "prokopakop-3f0d5f5")

	r := &bench.Resolver{Workspace: workspace, ReleaseDir: "target/release", Prefix: "prokopakop-"}

	artifact, err := r.Resolve(context.Background(), gitenv.Point{Label: "9119428"})
	require.NoError(t, err)
	assert.Equal(t, want, artifact.Path)
	assert.Equal(t, "9119428", artifact.Point)
}

func TestResolveMissingArtifact(t *testing.T) {
	workspace, _ := newWorkspace(t)

	r := &bench.Resolver{Workspace: workspace, ReleaseDir: "target/release", Prefix: "prokopakop-"}

	_, err := r.Resolve(context.Background(), gitenv.Point{Label: "deadbee"})
	require.ErrorIs(t, err, bench.ErrArtifactMissing)
}

func TestResolveManifestFallback(t *testing.T) {
	workspace, releaseDir := newWorkspace(t)

	manifest := "[package]\nname = \"prokopakop\"\nversion = \"0.1.0\"\n"
	err := os.WriteFile(filepath.Join(workspace, "Cargo.toml"), []byte(manifest), 0o644)
	require.NoError(t, err)

	want := writeBinary(t, releaseDir, "prokopakop")

	r := &bench.Resolver{Workspace: workspace, ReleaseDir: "target/release", Prefix: "prokopakop-"}

	// No prefixed binary for this point: fall back to the manifest name,
	// the way a freshly built artifact is found.
	artifact, err := r.Resolve(context.Background(), gitenv.Point{Label: "deadbee"})
	require.NoError(t, err)
	assert.Equal(t, want, artifact.Path)
}

func TestResolveBuildThenLocate(t *testing.T) {
	workspace, releaseDir := newWorkspace(t)

	manifest := "[package]\nname = \"prokopakop\"\n"
	err := os.WriteFile(filepath.Join(workspace, "Cargo.toml"), []byte(manifest), 0o644)
	require.NoError(t, err)

	// The "build" drops the binary into the release dir.
	binPath := filepath.Join(releaseDir, "prokopakop")

	r := &bench.Resolver{
		Workspace:    workspace,
		ReleaseDir:   "target/release",
		Prefix:       "prokopakop-",
		Build:        true,
		BuildCommand: "printf '#!/bin/sh\\n' > " + binPath + " && chmod +x " + binPath,
		BuildTimeout: 5 * time.Second,
	}

	artifact, err := r.Resolve(context.Background(), gitenv.Point{Label: "deadbee"})
	require.NoError(t, err)
	assert.Equal(t, binPath, artifact.Path)
}

func TestResolveBuildFailure(t *testing.T) {
	workspace, _ := newWorkspace(t)

	r := &bench.Resolver{
		Workspace:    workspace,
		ReleaseDir:   "target/release",
		Prefix:       "prokopakop-",
		Build:        true,
		BuildCommand: "exit 1",
		BuildTimeout: 5 * time.Second,
	}

	_, err := r.Resolve(context.Background(), gitenv.Point{Label: "deadbee"})
	require.ErrorIs(t, err, bench.ErrBuildFailed)
}

func TestManifestBinaryName(t *testing.T) {
	workspace := t.TempDir()

	manifest := "[package]\nname = \"prokopakop\"\nedition = \"2021\"\n"
	err := os.WriteFile(filepath.Join(workspace, "Cargo.toml"), []byte(manifest), 0o644)
	require.NoError(t, err)

	name, err := bench.ManifestBinaryName(workspace)
	require.NoError(t, err)
	assert.Equal(t, "prokopakop", name)
}

func TestManifestBinaryNameMissingFile(t *testing.T) {
	_, err := bench.ManifestBinaryName(t.TempDir())
	require.Error(t, err)
}

func TestManifestBinaryNameNoPackageName(t *testing.T) {
	workspace := t.TempDir()

	err := os.WriteFile(filepath.Join(workspace, "Cargo.toml"), []byte("[workspace]\n"), 0o644)
	require.NoError(t, err)

	_, err = bench.ManifestBinaryName(workspace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no package name")
}
