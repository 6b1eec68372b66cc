// Package config loads and validates benchwalk configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"fmt"
)

// Default benchmark settings. These mirror the knobs of the original
// perft benchmark harness.
const (
	DefaultBenchTargetDuration     = 30.0
	DefaultBenchWarmupRuns         = 3
	DefaultBenchMinRuns            = 10
	DefaultBenchDefaultRuns        = 10
	DefaultBenchOutput             = "benchmark_results.json"
	DefaultBenchWorkspace          = "."
	DefaultBenchReleaseDir         = "target/release"
	DefaultBenchBinaryPrefix       = "prokopakop-"
	DefaultBenchExpectedNodes      = 4865609
	DefaultBenchPerftDepth         = 5
	DefaultBenchBuild              = false
	DefaultBenchBuildCommand       = "cargo build --release"
	DefaultBenchBuildTimeoutSec    = 600
	DefaultBenchValidateTimeoutSec = 30
	DefaultBenchRecordInterrupted  = false
)

// Default tournament settings, matching the round-robin harness.
const (
	DefaultTournamentTimeControl  = "30+0.1"
	DefaultTournamentRounds       = 100
	DefaultTournamentConcurrency  = 32
	DefaultTournamentOpeningPlies = 6
	DefaultTournamentOpeningBook  = "data/book.pgn"
	DefaultTournamentFastchess    = "./bin/fastchess/fastchess"
	DefaultTournamentOutput       = "scripts/tournament_results.json"
	DefaultTournamentEnginesFile  = "engines.yaml"
)

// Default checkpoint settings.
const (
	DefaultCheckpointEnabled   = true
	DefaultCheckpointResume    = true
	DefaultCheckpointClearPrev = false
)

// Sentinel errors for configuration validation.
var (
	ErrNonPositiveDuration = errors.New("bench.target_duration must be positive")
	ErrMinRunsTooSmall     = errors.New("bench.min_runs must be at least 1")
	ErrNegativeWarmup      = errors.New("bench.warmup_runs must not be negative")
	ErrBadExpectedNodes    = errors.New("bench.expected_nodes must be positive")
	ErrBadPerftDepth       = errors.New("bench.perft_depth must be between 1 and 9")
	ErrEmptyOutput         = errors.New("bench.output must not be empty")
)

// Config is the root benchwalk configuration.
type Config struct {
	Bench         BenchConfig         `mapstructure:"bench"`
	Tournament    TournamentConfig    `mapstructure:"tournament"`
	Checkpoint    CheckpointConfig    `mapstructure:"checkpoint"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// BenchConfig configures the history walk: workload identity, calibration
// targets, artifact resolution, and ledger output.
type BenchConfig struct {
	// TargetDuration is the wall-clock budget in seconds each point's
	// measurement phase should fill.
	TargetDuration float64 `mapstructure:"target_duration"`

	// WarmupRuns is the warmup count passed to the measurement tool.
	WarmupRuns int `mapstructure:"warmup_runs"`

	// MinRuns is the repetition floor applied after calibration.
	MinRuns int `mapstructure:"min_runs"`

	// DefaultRuns is the fallback repetition count when calibration degrades.
	DefaultRuns int `mapstructure:"default_runs"`

	// Output is the ledger file path.
	Output string `mapstructure:"output"`

	// Workspace is the engine repository path.
	Workspace string `mapstructure:"workspace"`

	// ReleaseDir is the artifact search directory, relative to Workspace.
	ReleaseDir string `mapstructure:"release_dir"`

	// BinaryPrefix is prepended to a point identifier when searching for
	// a prebuilt artifact.
	BinaryPrefix string `mapstructure:"binary_prefix"`

	// ExpectedNodes is the known-correct perft node count for the workload.
	ExpectedNodes int64 `mapstructure:"expected_nodes"`

	// PerftDepth is the perft search depth of the fixed workload.
	PerftDepth int `mapstructure:"perft_depth"`

	// Build enables build-then-locate artifact resolution.
	Build bool `mapstructure:"build"`

	// BuildCommand is the shell command that builds the checked-out workspace.
	BuildCommand string `mapstructure:"build_command"`

	// BuildTimeoutSec bounds one build invocation.
	BuildTimeoutSec int `mapstructure:"build_timeout"`

	// ValidateTimeoutSec bounds one validation or calibration run.
	ValidateTimeoutSec int `mapstructure:"validate_timeout"`

	// PatchFiles are workspace paths restored from the pre-walk snapshot
	// before each build, when their content differs.
	PatchFiles []string `mapstructure:"patch_files"`

	// RecordInterrupted appends an "interrupted" record for a step cut
	// short by cancellation instead of dropping it.
	RecordInterrupted bool `mapstructure:"record_interrupted"`
}

// TournamentConfig configures the fastchess round-robin collaborator.
type TournamentConfig struct {
	TimeControl  string `mapstructure:"time_control"`
	Rounds       int    `mapstructure:"rounds"`
	Concurrency  int    `mapstructure:"concurrency"`
	OpeningPlies int    `mapstructure:"opening_plies"`
	OpeningBook  string `mapstructure:"opening_book"`
	Fastchess    string `mapstructure:"fastchess"`
	Output       string `mapstructure:"output"`
	EnginesFile  string `mapstructure:"engines_file"`
}

// CheckpointConfig configures walk resume.
type CheckpointConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Dir       string `mapstructure:"dir"`
	Resume    bool   `mapstructure:"resume"`
	ClearPrev bool   `mapstructure:"clear_prev"`
}

// ObservabilityConfig configures logging, tracing, and metrics export.
type ObservabilityConfig struct {
	OTLPEndpoint  string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure  bool    `mapstructure:"otlp_insecure"`
	DebugTrace    bool    `mapstructure:"debug_trace"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
	LogJSON       bool    `mapstructure:"log_json"`
	LogLevel      string  `mapstructure:"log_level"`
	MetricsListen string  `mapstructure:"metrics_listen"`
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Bench.TargetDuration <= 0 {
		return fmt.Errorf("%w: got %v", ErrNonPositiveDuration, c.Bench.TargetDuration)
	}

	if c.Bench.MinRuns < 1 {
		return fmt.Errorf("%w: got %d", ErrMinRunsTooSmall, c.Bench.MinRuns)
	}

	if c.Bench.WarmupRuns < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeWarmup, c.Bench.WarmupRuns)
	}

	if c.Bench.ExpectedNodes <= 0 {
		return fmt.Errorf("%w: got %d", ErrBadExpectedNodes, c.Bench.ExpectedNodes)
	}

	if c.Bench.PerftDepth < 1 || c.Bench.PerftDepth > 9 {
		return fmt.Errorf("%w: got %d", ErrBadPerftDepth, c.Bench.PerftDepth)
	}

	if c.Bench.Output == "" {
		return ErrEmptyOutput
	}

	return nil
}
