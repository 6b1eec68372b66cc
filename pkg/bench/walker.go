package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/benchwalk/pkg/gitenv"
	"github.com/Sumatoshi-tech/benchwalk/pkg/observability"
)

// ArtifactResolver locates or produces the artifact for one point.
type ArtifactResolver interface {
	Resolve(ctx context.Context, point gitenv.Point) (Artifact, error)
}

// WorkloadValidator checks an artifact's correctness against the fixed workload.
type WorkloadValidator interface {
	Validate(ctx context.Context, artifactPath string) ValidationOutcome
}

// CalibrationEngine projects the measurement plan from one trial run.
type CalibrationEngine interface {
	Estimate(ctx context.Context, artifactPath string) (Calibration, error)
}

// MeasurementExecutor delegates statistical timing to the external tool.
type MeasurementExecutor interface {
	Measure(ctx context.Context, artifactPath string, runs int, timeout time.Duration) (*Measurement, error)
}

// EnvironmentGuard captures the workspace position before the walk and
// restores it unconditionally at teardown.
type EnvironmentGuard interface {
	Capture() (gitenv.Snapshot, error)
	Restore(snap gitenv.Snapshot) error
}

// WorkspaceMutator checks out historical states and restores single files
// from a reference commit. Only set in build mode; nil means the walk
// never touches the working tree between points.
type WorkspaceMutator interface {
	CheckoutCommit(hash gitenv.Hash) error
	RestoreFileFrom(ref gitenv.Hash, path string) (bool, error)
}

// Walker advances through historical points one at a time, strictly
// sequentially, appending exactly one outcome record per visited point.
// Per-step failures are recovered locally; the walk continues. Cancellation
// is observed at the top of every step and before each blocking sub-call,
// and jumps straight to teardown.
type Walker struct {
	Source     gitenv.PointSource
	Guard      EnvironmentGuard
	Workspace  WorkspaceMutator
	Resolver   ArtifactResolver
	Validator  WorkloadValidator
	Calibrator CalibrationEngine
	Measurer   MeasurementExecutor
	Ledger     *Ledger

	// PatchFiles are restored from the pre-walk snapshot before validation,
	// best-effort (failures are logged, never recorded).
	PatchFiles []string

	// DefaultRuns is the repetition fallback when calibration degrades.
	DefaultRuns int

	// TargetDurationSec is recorded alongside successful measurements.
	TargetDurationSec float64

	// RecordInterrupted appends an "interrupted" record for a step cut
	// short by cancellation; the default drops the in-flight step.
	RecordInterrupted bool

	// AfterStep, when set, is invoked after each appended record
	// (checkpoint hook).
	AfterStep func(visited int)

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.WalkMetrics
}

// Walk runs the state machine Start -> (WalkStep)* -> Teardown -> End.
// The workspace is restored on every exit path; a restore failure is
// surfaced in the returned error but never discards ledger contents.
func (w *Walker) Walk(ctx context.Context) (err error) {
	logger := w.logger()

	snap, capErr := w.Guard.Capture()
	if capErr != nil {
		logger.Warn("workspace capture failed, teardown cannot restore", "error", capErr)
	} else {
		logger.Info("workspace captured", "position", snap.Ref())
	}

	defer func() {
		restoreErr := w.Guard.Restore(snap)

		switch {
		case restoreErr == nil:
			logger.Info("workspace restored", "position", snap.Ref())
		case errors.Is(restoreErr, gitenv.ErrEmptySnapshot):
			logger.Warn("no snapshot captured, workspace left as-is")
		default:
			logger.Error("workspace restore failed, position may differ from pre-walk state",
				"position", snap.Ref(), "error", restoreErr)

			err = errors.Join(err, fmt.Errorf("restore workspace: %w", restoreErr))
		}
	}()

	for {
		if ctx.Err() != nil {
			logger.Warn("walk interrupted", "visited", w.Ledger.Len())

			return ctx.Err()
		}

		point, nextErr := w.Source.Next()
		if nextErr != nil {
			if gitenv.IsExhausted(nextErr) {
				logger.Info("history exhausted", "visited", w.Ledger.Len())

				return nil
			}

			return fmt.Errorf("advance to next point: %w", nextErr)
		}

		start := time.Now()

		rec, stepErr := w.step(ctx, snap, point)
		if stepErr != nil {
			// Cancellation mid-step: the in-flight step is dropped unless
			// configured otherwise; already-gathered records stay.
			if w.RecordInterrupted {
				w.Ledger.Append(NewOutcomeRecord(point.ID(), point.Summary, OutcomeInterrupted, stepErr.Error()))
			}

			logger.Warn("step interrupted", "point", point.ID(), "visited", w.Ledger.Len())

			return stepErr
		}

		w.Ledger.Append(rec)
		w.observeStep(logger, rec, time.Since(start))

		if w.AfterStep != nil {
			w.AfterStep(w.Ledger.Len())
		}
	}
}

// step executes one WalkStep to completion. All per-stage failures are
// converted into an outcome record; the only error return is cancellation.
func (w *Walker) step(ctx context.Context, snap gitenv.Snapshot, point gitenv.Point) (OutcomeRecord, error) {
	stepCtx, span := w.tracer().Start(ctx, "walk.step",
		trace.WithAttributes(attribute.String("point", point.ID())))
	defer span.End()

	logger := w.logger().With("point", point.ID())

	if w.Workspace != nil {
		checkoutErr := w.Workspace.CheckoutCommit(point.Hash)
		if checkoutErr != nil {
			if stepCtx.Err() != nil {
				return OutcomeRecord{}, stepCtx.Err()
			}

			return NewOutcomeRecord(point.ID(), point.Summary, OutcomeBuildFailed,
				fmt.Sprintf("checkout: %v", checkoutErr)), nil
		}
	}

	artifact, resolveErr := w.Resolver.Resolve(stepCtx, point)
	if resolveErr != nil {
		if stepCtx.Err() != nil {
			return OutcomeRecord{}, stepCtx.Err()
		}

		return NewOutcomeRecord(point.ID(), point.Summary, resolveKind(resolveErr), resolveErr.Error()), nil
	}

	w.applyPatches(snap, logger)

	if stepCtx.Err() != nil {
		return OutcomeRecord{}, stepCtx.Err()
	}

	validation := w.Validator.Validate(stepCtx, artifact.Path)
	if stepCtx.Err() != nil {
		return OutcomeRecord{}, stepCtx.Err()
	}

	if !validation.Passed {
		return NewOutcomeRecord(point.ID(), point.Summary, OutcomeValidationFailed, validation.Reason), nil
	}

	cal, calErr := w.Calibrator.Estimate(stepCtx, artifact.Path)
	if stepCtx.Err() != nil {
		return OutcomeRecord{}, stepCtx.Err()
	}

	if calErr != nil {
		if !errors.Is(calErr, ErrCalibrationDegraded) {
			return NewOutcomeRecord(point.ID(), point.Summary, OutcomeMeasurementFailed, calErr.Error()), nil
		}

		logger.Warn("calibration degraded, using default run count",
			"runs", w.DefaultRuns, "error", calErr)

		cal = FallbackCalibration(w.DefaultRuns)
	}

	measurement, measureErr := w.Measurer.Measure(stepCtx, artifact.Path, cal.Runs, cal.Timeout)
	if stepCtx.Err() != nil {
		return OutcomeRecord{}, stepCtx.Err()
	}

	if measureErr != nil {
		return NewOutcomeRecord(point.ID(), point.Summary, measureKind(measureErr), measureErr.Error()), nil
	}

	measurement.SingleRunSec = cal.SingleRun.Seconds()
	measurement.TargetDuration = w.TargetDurationSec

	rec := NewOutcomeRecord(point.ID(), point.Summary, OutcomeSuccess, "")
	rec.Measurement = measurement

	return rec, nil
}

// applyPatches restores each configured file from the pre-walk snapshot
// when its content differs. Failures are logged warnings, never outcomes.
func (w *Walker) applyPatches(snap gitenv.Snapshot, logger *slog.Logger) {
	if w.Workspace == nil || snap.Head.IsZero() {
		return
	}

	for _, path := range w.PatchFiles {
		restored, patchErr := w.Workspace.RestoreFileFrom(snap.Head, path)
		if patchErr != nil {
			logger.Warn("recovery patch failed", "file", path, "error", patchErr)

			continue
		}

		if restored {
			logger.Info("recovery patch applied", "file", path)
		}
	}
}

// observeStep emits the per-step log line and metrics.
func (w *Walker) observeStep(logger *slog.Logger, rec OutcomeRecord, elapsed time.Duration) {
	if w.Metrics != nil {
		w.Metrics.RecordStep(string(rec.Kind), elapsed.Seconds())

		if rec.Measurement != nil {
			w.Metrics.RecordMean(rec.Measurement.MeanSec)
		}
	}

	if rec.Kind == OutcomeSuccess {
		logger.Info("benchmarked",
			"point", rec.Point,
			"runs", rec.Measurement.Runs,
			"mean_sec", rec.Measurement.MeanSec,
			"nps", rec.Measurement.NodesPerSec,
		)

		return
	}

	logger.Warn("step failed", "point", rec.Point, "kind", rec.Kind, "detail", rec.Detail)
}

// resolveKind classifies a resolver error into an outcome kind.
func resolveKind(err error) OutcomeKind {
	if errors.Is(err, ErrBuildFailed) {
		return OutcomeBuildFailed
	}

	return OutcomeArtifactMissing
}

// measureKind classifies a measurement error into an outcome kind.
func measureKind(err error) OutcomeKind {
	if errors.Is(err, ErrParseFailed) {
		return OutcomeParseFailed
	}

	return OutcomeMeasurementFailed
}

func (w *Walker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}

	return slog.Default()
}

func (w *Walker) tracer() trace.Tracer {
	if w.Tracer != nil {
		return w.Tracer
	}

	return nooptrace.NewTracerProvider().Tracer("benchwalk")
}
