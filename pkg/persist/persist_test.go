package persist_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/persist"
)

type sampleState struct {
	Name  string    `json:"name"`
	Runs  int       `json:"runs"`
	Times []float64 `json:"times"`
}

func sample() sampleState {
	return sampleState{Name: "perft", Runs: 60, Times: []float64{0.5, 0.49, 0.51}}
}

func TestJSONCodecRoundtrip(t *testing.T) {
	codec := persist.NewJSONCodec()
	assert.Equal(t, ".json", codec.Extension())

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, sample()))

	// Pretty-printed by default.
	assert.Contains(t, buf.String(), "\n  \"name\"")

	var got sampleState

	require.NoError(t, codec.Decode(&buf, &got))
	assert.Equal(t, sample(), got)
}

func TestJSONCodecCompact(t *testing.T) {
	codec := &persist.JSONCodec{}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, sample()))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestLZ4CodecRoundtrip(t *testing.T) {
	codec := persist.NewLZ4Codec()
	assert.Equal(t, ".json.lz4", codec.Extension())

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, sample()))

	// The frame is binary, not readable JSON.
	assert.NotContains(t, buf.String(), `"name"`)

	var got sampleState

	require.NoError(t, codec.Decode(&buf, &got))
	assert.Equal(t, sample(), got)
}

func TestSaveLoadState(t *testing.T) {
	dir := t.TempDir()
	codec := persist.NewLZ4Codec()

	require.NoError(t, persist.SaveState(dir, "walk", codec, sample()))

	_, err := os.Stat(filepath.Join(dir, "walk.json.lz4"))
	require.NoError(t, err)

	var got sampleState

	require.NoError(t, persist.LoadState(dir, "walk", codec, &got))
	assert.Equal(t, sample(), got)
}

func TestLoadStateMissing(t *testing.T) {
	var got sampleState

	err := persist.LoadState(t.TempDir(), "walk", persist.NewJSONCodec(), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open state file")
}

func TestSaveFileCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.json")

	require.NoError(t, persist.SaveFile(path, persist.NewJSONCodec(), sample()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
