package bench

import (
	"fmt"
	"strings"
)

// Workload is the fixed, deterministic input used both to validate
// correctness and to measure performance: a short UCI script running a
// perft search with a known node count.
type Workload struct {
	// PerftDepth is the perft search depth.
	PerftDepth int

	// ExpectedNodes is the known-correct node count for this depth from
	// the starting position.
	ExpectedNodes int64
}

// Script returns the UCI command sequence fed to the engine.
func (w Workload) Script() string {
	return fmt.Sprintf("uci\\ngo perft %d\\nquit\\n", w.PerftDepth)
}

// Command returns the shell command that pipes the script into the given
// artifact. The identical string is used for validation, calibration, and
// measurement, so all three phases exercise the same process.
func (w Workload) Command(artifactPath string) string {
	return fmt.Sprintf("printf %s | %s", shellQuote(w.Script()), shellQuote(artifactPath))
}

// shellQuote wraps s in single quotes, escaping embedded single quotes,
// so the string survives one level of sh parsing.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
