package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Sentinel errors for the measurement phase.
var (
	// ErrMeasurementFailed covers tool failure, timeout, or empty results.
	ErrMeasurementFailed = errors.New("measurement failed")

	// ErrParseFailed covers structurally invalid tool output.
	ErrParseFailed = errors.New("parse failed")
)

// exportSchema validates the hyperfine JSON export before decoding: every
// result must expose numeric mean/stddev/min/max and a times array.
const exportSchema = `{
  "type": "object",
  "required": ["results"],
  "properties": {
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["mean", "stddev", "min", "max", "times"],
        "properties": {
          "mean":   {"type": "number"},
          "stddev": {"type": "number"},
          "min":    {"type": "number"},
          "max":    {"type": "number"},
          "times":  {"type": "array", "items": {"type": "number"}}
        }
      }
    }
  }
}`

// hyperfineExport mirrors the measurement tool's JSON export shape.
type hyperfineExport struct {
	Results []hyperfineResult `json:"results"`
}

type hyperfineResult struct {
	Mean   float64   `json:"mean"`
	Stddev float64   `json:"stddev"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Times  []float64 `json:"times"`
}

// Measurer delegates statistical timing to hyperfine and normalizes its
// export into a Measurement. The export file is exchanged through a
// temporary path removed after parsing regardless of outcome.
type Measurer struct {
	// Hyperfine is the benchmarking tool invocation name or path.
	Hyperfine string

	// Workload is the fixed script and node count for throughput derivation.
	Workload Workload

	// WarmupRuns is passed through to the tool.
	WarmupRuns int

	// Dir is the working directory for the tool.
	Dir string

	// TempDir overrides the export file directory (defaults to os.TempDir).
	TempDir string
}

// Measure runs hyperfine with the calibrated repetition count and timeout.
func (m *Measurer) Measure(
	ctx context.Context, artifactPath string, runs int, timeout time.Duration,
) (*Measurement, error) {
	export, err := os.CreateTemp(m.TempDir, "benchwalk-hyperfine-*.json")
	if err != nil {
		return nil, fmt.Errorf("%w: create export file: %v", ErrMeasurementFailed, err)
	}

	exportPath := export.Name()
	export.Close()

	defer os.Remove(exportPath)

	command := fmt.Sprintf("%s --runs %d --warmup %d --export-json %s %s",
		m.tool(), runs, m.WarmupRuns, shellQuote(exportPath), shellQuote(m.Workload.Command(artifactPath)))

	_, runErr := runShell(ctx, m.Dir, command, timeout)
	if runErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMeasurementFailed, runErr)
	}

	result, parseErr := m.parseExport(exportPath)
	if parseErr != nil {
		return nil, parseErr
	}

	return m.normalize(result, runs), nil
}

// tool returns the configured tool name, defaulting to "hyperfine".
func (m *Measurer) tool() string {
	if m.Hyperfine == "" {
		return "hyperfine"
	}

	return m.Hyperfine
}

// parseExport validates and decodes the tool's JSON export.
func (m *Measurer) parseExport(path string) (*hyperfineResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read export: %v", ErrMeasurementFailed, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty export", ErrMeasurementFailed)
	}

	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(exportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	if !validation.Valid() {
		return nil, fmt.Errorf("%w: export schema: %s", ErrParseFailed, schemaErrors(validation))
	}

	var export hyperfineExport

	decodeErr := json.Unmarshal(data, &export)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode export: %v", ErrParseFailed, decodeErr)
	}

	if len(export.Results) == 0 {
		return nil, fmt.Errorf("%w: no results in export", ErrMeasurementFailed)
	}

	return &export.Results[0], nil
}

// normalize packages the tool's statistics into an immutable Measurement,
// deriving throughput as expected_nodes / mean_seconds.
func (m *Measurer) normalize(result *hyperfineResult, runs int) *Measurement {
	var actual float64
	for _, t := range result.Times {
		actual += t
	}

	var nps float64
	if result.Mean > 0 {
		nps = float64(m.Workload.ExpectedNodes) / result.Mean
	}

	return &Measurement{
		MeanSec:        result.Mean,
		StddevSec:      result.Stddev,
		MinSec:         result.Min,
		MaxSec:         result.Max,
		TimesSec:       result.Times,
		Runs:           runs,
		WarmupRuns:     m.WarmupRuns,
		ActualDuration: actual,
		Nodes:          m.Workload.ExpectedNodes,
		NodesPerSec:    nps,
	}
}

// schemaErrors joins schema violation descriptions into one line.
func schemaErrors(result *gojsonschema.Result) string {
	parts := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		parts = append(parts, desc.String())
	}

	return strings.Join(parts, "; ")
}
