package checkpoint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
	"github.com/Sumatoshi-tech/benchwalk/pkg/checkpoint"
)

func newManager(t *testing.T, repoPath string) *checkpoint.Manager {
	t.Helper()

	return checkpoint.NewManager(t.TempDir(), checkpoint.RepoHash(repoPath))
}

func sampleState() *checkpoint.WalkState {
	return &checkpoint.WalkState{
		NextIndex: 2,
		Records: []bench.OutcomeRecord{
			bench.NewOutcomeRecord("9119428", "tune eval", bench.OutcomeSuccess, ""),
			bench.NewOutcomeRecord("3f0d5f5", "fix castling", bench.OutcomeBuildFailed, "cargo exited 101"),
		},
	}
}

func TestRepoHash(t *testing.T) {
	h := checkpoint.RepoHash("/home/user/prokopakop")

	assert.Len(t, h, 16)
	assert.Equal(t, h, checkpoint.RepoHash("/home/user/prokopakop"))
	assert.NotEqual(t, h, checkpoint.RepoHash("/home/user/other"))
}

func TestDefaultDir(t *testing.T) {
	dir := checkpoint.DefaultDir()

	assert.True(t, strings.HasSuffix(dir, ".benchwalk/checkpoints"), dir)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	repoPath := "/home/user/prokopakop"
	m := newManager(t, repoPath)
	points := []string{"9119428", "3f0d5f5", "deadbee"}

	assert.False(t, m.Exists())

	require.NoError(t, m.Save(sampleState(), repoPath, points))
	assert.True(t, m.Exists())

	state, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, sampleState().NextIndex, state.NextIndex)
	assert.Equal(t, sampleState().Records, state.Records)

	meta, err := m.LoadMetadata()
	require.NoError(t, err)
	assert.Equal(t, checkpoint.MetadataVersion, meta.Version)
	assert.Equal(t, repoPath, meta.RepoPath)
	assert.Equal(t, points, meta.Points)
	assert.NotEmpty(t, meta.CreatedAt)
}

func TestValidate(t *testing.T) {
	repoPath := "/home/user/prokopakop"
	m := newManager(t, repoPath)
	points := []string{"9119428", "3f0d5f5"}

	require.NoError(t, m.Save(sampleState(), repoPath, points))

	assert.NoError(t, m.Validate(repoPath, points))

	err := m.Validate("/somewhere/else", points)
	require.ErrorIs(t, err, checkpoint.ErrRepoPathMismatch)

	err = m.Validate(repoPath, []string{"9119428"})
	require.ErrorIs(t, err, checkpoint.ErrPointsMismatch)

	err = m.Validate(repoPath, []string{"9119428", "0000000"})
	require.ErrorIs(t, err, checkpoint.ErrPointsMismatch)
}

func TestClear(t *testing.T) {
	repoPath := "/home/user/prokopakop"
	m := newManager(t, repoPath)

	// Clearing a missing checkpoint is not an error.
	require.NoError(t, m.Clear())

	require.NoError(t, m.Save(sampleState(), repoPath, []string{"9119428"}))
	require.True(t, m.Exists())

	require.NoError(t, m.Clear())
	assert.False(t, m.Exists())

	_, err := m.Load()
	require.Error(t, err)
}
