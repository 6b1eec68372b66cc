package tournament

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrEngineBinaryMissing signals that no release binary matches an engine spec.
var ErrEngineBinaryMissing = errors.New("engine binary missing")

// noiseFilter drops fastchess's per-move chatter so only the standings
// survive on stdout.
const noiseFilter = `grep -Ev '^(Moves|Info|Warning|Position);'`

// Config describes one tournament invocation.
type Config struct {
	// Fastchess is the path to the fastchess binary.
	Fastchess string

	// Workspace is the engine repository root.
	Workspace string

	// ReleaseDir is the binary search directory, relative to Workspace.
	ReleaseDir string

	// Prefix is prepended to point identifiers when matching binaries.
	Prefix string

	// TimeControl is the per-game clock, e.g. "30+0.1".
	TimeControl string

	// Rounds is the number of rounds.
	Rounds int

	// Concurrency is the number of games played in parallel.
	Concurrency int

	// OutFile receives the fastchess config/results dump.
	OutFile string

	// BookFile is the PGN opening book.
	BookFile string

	// BookPlies is how deep openings are played from the book.
	BookPlies int
}

// FindBinary resolves an engine spec's binary: the default name for an
// empty spec, an exact file name first, then a prefix match on the point
// identifier.
func (c *Config) FindBinary(name string) (string, error) {
	if name == "" {
		name = defaultEngineName
	}

	dir := filepath.Join(c.Workspace, c.ReleaseDir)

	exact := filepath.Join(dir, name)

	info, statErr := os.Stat(exact)
	if statErr == nil && !info.IsDir() {
		return exact, nil
	}

	want := c.Prefix + name

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrEngineBinaryMissing, dir, err)
	}

	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasPrefix(entry.Name(), want) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: no %s or %s* in %s", ErrEngineBinaryMissing, name, want, dir)
}

// BuildCommand assembles the full fastchess invocation for the given
// roster, wrapped in bash -c with the noise filter appended. Engine names
// get an index suffix so identical labels stay distinguishable.
func (c *Config) BuildCommand(engines []EngineSpec) ([]string, error) {
	args := []string{c.Fastchess}

	for i, engine := range engines {
		path, err := c.FindBinary(engine.Name)
		if err != nil {
			return nil, fmt.Errorf("engine %d (%s): %w", i, engine.DisplayName(), err)
		}

		args = append(args,
			"-engine",
			"cmd="+path,
			fmt.Sprintf("name=%s-%d", engine.DisplayName(), i),
		)

		args = append(args, uciOptions(engine.Options)...)
	}

	args = append(args,
		"-each",
		"tc="+c.TimeControl,
		"restart=on",
		"-rounds",
		fmt.Sprint(c.Rounds),
		"-concurrency",
		fmt.Sprint(c.Concurrency),
		"-config",
		"outname="+c.OutFile,
		"-openings",
		"file="+c.BookFile,
		"format=pgn",
		fmt.Sprintf("plies=%d", c.BookPlies),
		"order=random",
	)

	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}

	return []string{"bash", "-c", strings.Join(quoted, " ") + " | " + noiseFilter}, nil
}

// uciOptions renders an options map as deterministic option.K=V arguments.
func uciOptions(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, key := range keys {
		args = append(args, fmt.Sprintf("option.%s=%s", key, options[key]))
	}

	return args
}

// shellQuote wraps s in single quotes, escaping embedded single quotes,
// so the string survives one level of shell parsing.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
