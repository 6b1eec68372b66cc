package tournament_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/tournament"
)

func writeEnginesFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "engines.yaml")

	err := os.WriteFile(path, []byte(body), 0o644)
	require.NoError(t, err)

	return path
}

func TestLoadEnginesScalarAndMapping(t *testing.T) {
	path := writeEnginesFile(t, `engines:
  - 9119428
  - name: 3f0d5f5
    label: experiment-18-0
    options:
      NNUE: train/experiment-18/quantised.bin
      Hash: "256"
`)

	engines, err := tournament.LoadEngines(path)
	require.NoError(t, err)
	require.Len(t, engines, 2)

	assert.Equal(t, "9119428", engines[0].Name)
	assert.Empty(t, engines[0].Label)

	assert.Equal(t, "3f0d5f5", engines[1].Name)
	assert.Equal(t, "experiment-18-0", engines[1].Label)
	assert.Equal(t, "train/experiment-18/quantised.bin", engines[1].Options["NNUE"])
	assert.Equal(t, "256", engines[1].Options["Hash"])
}

func TestLoadEnginesEmptyRoster(t *testing.T) {
	path := writeEnginesFile(t, "engines: []\n")

	_, err := tournament.LoadEngines(path)
	require.ErrorIs(t, err, tournament.ErrBadEngineSpec)
}

func TestLoadEnginesBadSpec(t *testing.T) {
	path := writeEnginesFile(t, "engines:\n  - [not, a, spec]\n")

	_, err := tournament.LoadEngines(path)
	require.Error(t, err)
}

func TestLoadEnginesMissingFile(t *testing.T) {
	_, err := tournament.LoadEngines(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "experiment-18-0", tournament.EngineSpec{Name: "3f0d5f5", Label: "experiment-18-0"}.DisplayName())
	assert.Equal(t, "3f0d5f5", tournament.EngineSpec{Name: "3f0d5f5"}.DisplayName())
	assert.Equal(t, "prokopakop", tournament.EngineSpec{}.DisplayName())
}
