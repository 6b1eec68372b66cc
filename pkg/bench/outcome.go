// Package bench implements the adaptive history-walking benchmark
// orchestrator: artifact resolution, workload validation, run-count
// calibration, measurement via hyperfine, and the append-only result ledger.
package bench

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/benchwalk/pkg/persist"
)

// OutcomeKind classifies the result of one walk step.
type OutcomeKind string

// Outcome kinds, one per failure stage plus success and interruption.
const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeBuildFailed       OutcomeKind = "build_failed"
	OutcomeArtifactMissing   OutcomeKind = "artifact_missing"
	OutcomeValidationFailed  OutcomeKind = "validation_failed"
	OutcomeMeasurementFailed OutcomeKind = "measurement_failed"
	OutcomeParseFailed       OutcomeKind = "parse_failed"
	OutcomeInterrupted       OutcomeKind = "interrupted"
)

// Measurement holds normalized timing statistics for one successful step.
// All durations are in seconds. Immutable after creation.
type Measurement struct {
	MeanSec        float64   `json:"mean_sec"`
	StddevSec      float64   `json:"stddev_sec"`
	MinSec         float64   `json:"min_sec"`
	MaxSec         float64   `json:"max_sec"`
	TimesSec       []float64 `json:"times_sec"`
	Runs           int       `json:"runs"`
	WarmupRuns     int       `json:"warmup_runs"`
	SingleRunSec   float64   `json:"single_run_sec"`
	TargetDuration float64   `json:"target_duration_sec"`
	ActualDuration float64   `json:"actual_duration_sec"`
	Nodes          int64     `json:"nodes"`
	NodesPerSec    float64   `json:"nodes_per_sec"`
}

// OutcomeRecord is one ledger entry: the outcome of visiting one
// historical point, tagged with its identifier and a timestamp.
type OutcomeRecord struct {
	Point       string       `json:"point"`
	Summary     string       `json:"summary,omitempty"`
	Kind        OutcomeKind  `json:"kind"`
	Detail      string       `json:"detail,omitempty"`
	Measurement *Measurement `json:"measurement,omitempty"`
	Timestamp   string       `json:"timestamp"`
}

// NewOutcomeRecord creates a record for the given point, stamped with the
// current UTC time.
func NewOutcomeRecord(point, summary string, kind OutcomeKind, detail string) OutcomeRecord {
	return OutcomeRecord{
		Point:     point,
		Summary:   summary,
		Kind:      kind,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Ledger is the append-only ordered sequence of outcome records: the
// durable output of a walk. It is persistable at any time, so partial
// ledgers from interrupted walks survive.
type Ledger struct {
	records []OutcomeRecord
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds one record. Records are never modified or removed.
func (l *Ledger) Append(rec OutcomeRecord) {
	l.records = append(l.records, rec)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the ledger contents.
func (l *Ledger) Records() []OutcomeRecord {
	return slices.Clone(l.records)
}

// Replace resets the ledger contents, used when resuming from a checkpoint.
func (l *Ledger) Replace(records []OutcomeRecord) {
	l.records = slices.Clone(records)
}

// SaveTo persists the ledger as a pretty-printed JSON array at path.
func (l *Ledger) SaveTo(path string) error {
	err := persist.SaveFile(path, persist.NewJSONCodec(), l.records)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	return nil
}

// LoadRecords reads a previously persisted ledger.
func LoadRecords(path string) ([]OutcomeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	var records []OutcomeRecord

	decodeErr := persist.NewJSONCodec().Decode(file, &records)
	if decodeErr != nil {
		return nil, fmt.Errorf("load ledger: %w", decodeErr)
	}

	return records, nil
}
