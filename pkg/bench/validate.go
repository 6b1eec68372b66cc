package bench

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Validation failure reasons.
const (
	ReasonProcessFailed = "process_failed"
	ReasonNoResult      = "no_result_found"
)

// nodesPattern extracts the perft node count from engine output.
var nodesPattern = regexp.MustCompile(`Nodes:\s*(\d+)`)

// ValidationOutcome is the result of checking one artifact against the
// fixed workload: pass/fail plus a diagnostic reason on failure.
type ValidationOutcome struct {
	Passed bool
	Reason string
}

// Validator runs the fixed workload against a candidate artifact and
// compares the reported node count with the known-correct constant.
// It is a pure function of (artifact, workload); no persistent side effects.
type Validator struct {
	// Workload is the fixed script and expected node count.
	Workload Workload

	// Timeout bounds one validation run.
	Timeout time.Duration

	// Dir is the working directory for the engine process.
	Dir string
}

// Validate executes the workload once and checks its output.
func (v *Validator) Validate(ctx context.Context, artifactPath string) ValidationOutcome {
	output, err := runShell(ctx, v.Dir, v.Workload.Command(artifactPath), v.Timeout)
	if err != nil {
		return ValidationOutcome{Reason: ReasonProcessFailed}
	}

	match := nodesPattern.FindStringSubmatch(output)
	if match == nil {
		return ValidationOutcome{Reason: ReasonNoResult}
	}

	nodes, parseErr := strconv.ParseInt(match[1], 10, 64)
	if parseErr != nil {
		return ValidationOutcome{Reason: ReasonNoResult}
	}

	if nodes != v.Workload.ExpectedNodes {
		return ValidationOutcome{
			Reason: fmt.Sprintf("result_mismatch: expected %d got %d", v.Workload.ExpectedNodes, nodes),
		}
	}

	return ValidationOutcome{Passed: true}
}
