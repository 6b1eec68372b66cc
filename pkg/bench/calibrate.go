package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Calibration timeout parameters. The timeout is deliberately generous so
// slow machines or slightly-off calibration never cause spurious timeouts.
const (
	// timeoutFloorSec is the minimum measurement timeout.
	timeoutFloorSec = 300

	// timeoutBufferSec is added to the projected duration before scaling.
	timeoutBufferSec = 60

	// timeoutScale inflates the projected duration.
	timeoutScale = 1.5

	// fallbackSingleRunSec stands in for the trial duration when
	// calibration degrades.
	fallbackSingleRunSec = 1.0
)

// ErrCalibrationDegraded signals that the trial run failed or produced a
// non-positive duration. Non-fatal: the caller falls back to the default
// repetition count.
var ErrCalibrationDegraded = errors.New("calibration degraded")

// Calibration is the projected measurement plan for one point. Derived
// from one timed trial; never reused across points, since workload cost
// changes between versions.
type Calibration struct {
	// SingleRun is the trial run's wall-clock duration.
	SingleRun time.Duration

	// Runs is the repetition count projected to fill the target duration.
	Runs int

	// Timeout bounds the whole measurement phase.
	Timeout time.Duration
}

// Calibrator estimates how many repetitions fill the target wall-clock
// budget from a single untrimmed trial run. One sample is statistically
// weak (no variance estimate) but cheap; the projection formula is kept
// as-is from the original harness.
type Calibrator struct {
	// Workload is the fixed script.
	Workload Workload

	// TargetDuration is the wall-clock budget in seconds.
	TargetDuration float64

	// MinRuns is the repetition floor.
	MinRuns int

	// TrialTimeout bounds the single trial run.
	TrialTimeout time.Duration

	// Dir is the working directory for the engine process.
	Dir string
}

// TargetRuns projects the repetition count: max(minRuns, floor(target/t)).
// Non-positive trial durations yield the floor.
func TargetRuns(singleRunSec, targetDurationSec float64, minRuns int) int {
	if singleRunSec <= 0 {
		return minRuns
	}

	runs := int(targetDurationSec / singleRunSec)
	if runs < minRuns {
		runs = minRuns
	}

	return runs
}

// MeasurementTimeout computes the bounded timeout for the measurement
// phase: max(300s, ceil(1.5 * (runs*t + 60s))).
func MeasurementTimeout(runs int, singleRunSec float64) time.Duration {
	projected := float64(runs)*singleRunSec + timeoutBufferSec

	sec := int(math.Ceil(projected * timeoutScale))
	if sec < timeoutFloorSec {
		sec = timeoutFloorSec
	}

	return time.Duration(sec) * time.Second
}

// FallbackCalibration is the plan used when calibration degrades: the
// configured default repetition count with a conservatively projected timeout.
func FallbackCalibration(defaultRuns int) Calibration {
	return Calibration{
		Runs:    defaultRuns,
		Timeout: MeasurementTimeout(defaultRuns, fallbackSingleRunSec),
	}
}

// Estimate runs the workload once, times it, and projects the measurement
// plan. Returns ErrCalibrationDegraded when the trial fails or measures a
// non-positive duration; a cancelled context is returned as-is so the
// walker can distinguish interruption from degradation.
func (c *Calibrator) Estimate(ctx context.Context, artifactPath string) (Calibration, error) {
	start := time.Now()

	_, err := runShell(ctx, c.Dir, c.Workload.Command(artifactPath), c.TrialTimeout)
	if ctx.Err() != nil {
		return Calibration{}, fmt.Errorf("calibration trial: %w", ctx.Err())
	}

	if err != nil {
		return Calibration{}, fmt.Errorf("%w: trial run: %v", ErrCalibrationDegraded, err)
	}

	elapsed := time.Since(start)
	if elapsed <= 0 {
		return Calibration{}, fmt.Errorf("%w: non-positive trial duration", ErrCalibrationDegraded)
	}

	runs := TargetRuns(elapsed.Seconds(), c.TargetDuration, c.MinRuns)

	return Calibration{
		SingleRun: elapsed,
		Runs:      runs,
		Timeout:   MeasurementTimeout(runs, elapsed.Seconds()),
	}, nil
}
