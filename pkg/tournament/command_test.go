package tournament_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/tournament"
)

func newTournamentConfig(t *testing.T) *tournament.Config {
	t.Helper()

	workspace := t.TempDir()

	err := os.MkdirAll(filepath.Join(workspace, "target", "release"), 0o755)
	require.NoError(t, err)

	return &tournament.Config{
		Fastchess:   "./bin/fastchess/fastchess",
		Workspace:   workspace,
		ReleaseDir:  "target/release",
		Prefix:      "prokopakop-",
		TimeControl: "30+0.1",
		Rounds:      100,
		Concurrency: 32,
		OutFile:     "scripts/tournament_results.json",
		BookFile:    "data/book.pgn",
		BookPlies:   6,
	}
}

func addBinary(t *testing.T, cfg *tournament.Config, name string) string {
	t.Helper()

	path := filepath.Join(cfg.Workspace, cfg.ReleaseDir, name)

	err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755)
	require.NoError(t, err)

	return path
}

func TestFindBinaryExactMatch(t *testing.T) {
	cfg := newTournamentConfig(t)
	want := addBinary(t, cfg, "prokopakop-9119428")

	got, err := cfg.FindBinary("prokopakop-9119428")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindBinaryPrefixMatch(t *testing.T) {
	cfg := newTournamentConfig(t)
	want := addBinary(t, cfg, "prokopakop-9119428-nnue")

	got, err := cfg.FindBinary("9119428")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindBinaryDefaultName(t *testing.T) {
	cfg := newTournamentConfig(t)
	want := addBinary(t, cfg, "prokopakop")

	got, err := cfg.FindBinary("")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindBinaryMissing(t *testing.T) {
	cfg := newTournamentConfig(t)

	_, err := cfg.FindBinary("deadbee")
	require.ErrorIs(t, err, tournament.ErrEngineBinaryMissing)
}

func TestBuildCommand(t *testing.T) {
	cfg := newTournamentConfig(t)
	first := addBinary(t, cfg, "prokopakop-9119428")
	second := addBinary(t, cfg, "prokopakop-3f0d5f5")

	engines := []tournament.EngineSpec{
		{Name: "9119428"},
		{Name: "3f0d5f5", Label: "experiment-18-0", Options: map[string]string{
			"NNUE": "train/quantised.bin",
			"Hash": "256",
		}},
	}

	command, err := cfg.BuildCommand(engines)
	require.NoError(t, err)
	require.Len(t, command, 3)

	assert.Equal(t, "bash", command[0])
	assert.Equal(t, "-c", command[1])

	line := command[2]
	assert.Contains(t, line, "'cmd="+first+"'")
	assert.Contains(t, line, "'cmd="+second+"'")

	// Index suffixes keep duplicate labels apart.
	assert.Contains(t, line, "'name=9119428-0'")
	assert.Contains(t, line, "'name=experiment-18-0-1'")

	// Options are emitted in sorted key order.
	hashIdx := strings.Index(line, "option.Hash=256")
	nnueIdx := strings.Index(line, "option.NNUE=train/quantised.bin")
	require.GreaterOrEqual(t, hashIdx, 0)
	require.GreaterOrEqual(t, nnueIdx, 0)
	assert.Less(t, hashIdx, nnueIdx)

	assert.Contains(t, line, "'tc=30+0.1'")
	assert.Contains(t, line, "'-rounds' '100'")
	assert.Contains(t, line, "'-concurrency' '32'")
	assert.Contains(t, line, "'plies=6'")
	assert.Contains(t, line, "'order=random'")
	assert.True(t, strings.HasSuffix(line, "| grep -Ev '^(Moves|Info|Warning|Position);'"), line)
}

func TestBuildCommandMissingEngine(t *testing.T) {
	cfg := newTournamentConfig(t)

	_, err := cfg.BuildCommand([]tournament.EngineSpec{{Name: "deadbee", Label: "ghost"}})
	require.ErrorIs(t, err, tournament.ErrEngineBinaryMissing)
	assert.Contains(t, err.Error(), "ghost")
}
