package bench_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
)

// fakeHyperfine writes a script that mimics hyperfine's export behavior:
// it receives --runs N --warmup W --export-json <path> '<cmd>' and dumps
// the given JSON to the export path.
func fakeHyperfine(t *testing.T, dir, exportJSON string) string {
	t.Helper()

	body := "cat <<'JSON' > \"$6\"\n" + exportJSON + "\nJSON"

	return fakeEngine(t, dir, "hyperfine", body)
}

const goodExport = `{"results":[{"mean":0.5,"stddev":0.01,"min":0.48,"max":0.52,"times":[0.5,0.49,0.51]}]}`

func TestMeasure(t *testing.T) {
	dir := t.TempDir()
	tool := fakeHyperfine(t, dir, goodExport)

	m := &bench.Measurer{
		Hyperfine:  tool,
		Workload:   testWorkload(),
		WarmupRuns: 3,
		Dir:        dir,
		TempDir:    dir,
	}

	measurement, err := m.Measure(context.Background(), "/tmp/engine", 10, time.Minute)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, measurement.MeanSec, 1e-9)
	assert.InDelta(t, 0.01, measurement.StddevSec, 1e-9)
	assert.InDelta(t, 0.48, measurement.MinSec, 1e-9)
	assert.InDelta(t, 0.52, measurement.MaxSec, 1e-9)
	assert.Len(t, measurement.TimesSec, 3)
	assert.Equal(t, 10, measurement.Runs)
	assert.Equal(t, 3, measurement.WarmupRuns)
	assert.InDelta(t, 1.5, measurement.ActualDuration, 1e-9)
	assert.Equal(t, int64(4865609), measurement.Nodes)
	assert.InDelta(t, 4865609/0.5, measurement.NodesPerSec, 1e-6)
}

func TestMeasureToolFailure(t *testing.T) {
	dir := t.TempDir()
	tool := fakeEngine(t, dir, "hyperfine", `exit 1`)

	m := &bench.Measurer{Hyperfine: tool, Workload: testWorkload(), Dir: dir, TempDir: dir}

	_, err := m.Measure(context.Background(), "/tmp/engine", 10, time.Minute)
	require.ErrorIs(t, err, bench.ErrMeasurementFailed)
}

func TestMeasureEmptyExport(t *testing.T) {
	dir := t.TempDir()
	tool := fakeEngine(t, dir, "hyperfine", `true`)

	m := &bench.Measurer{Hyperfine: tool, Workload: testWorkload(), Dir: dir, TempDir: dir}

	_, err := m.Measure(context.Background(), "/tmp/engine", 10, time.Minute)
	require.ErrorIs(t, err, bench.ErrMeasurementFailed)
}

func TestMeasureMalformedExport(t *testing.T) {
	dir := t.TempDir()
	tool := fakeHyperfine(t, dir, `{"results": "not an array"}`)

	m := &bench.Measurer{Hyperfine: tool, Workload: testWorkload(), Dir: dir, TempDir: dir}

	_, err := m.Measure(context.Background(), "/tmp/engine", 10, time.Minute)
	require.ErrorIs(t, err, bench.ErrParseFailed)
}

func TestMeasureSchemaViolation(t *testing.T) {
	dir := t.TempDir()

	// Missing required stddev/min/max/times fields.
	tool := fakeHyperfine(t, dir, `{"results":[{"mean":0.5}]}`)

	m := &bench.Measurer{Hyperfine: tool, Workload: testWorkload(), Dir: dir, TempDir: dir}

	_, err := m.Measure(context.Background(), "/tmp/engine", 10, time.Minute)
	require.ErrorIs(t, err, bench.ErrParseFailed)
}

func TestMeasureNoResults(t *testing.T) {
	dir := t.TempDir()
	tool := fakeHyperfine(t, dir, `{"results":[]}`)

	m := &bench.Measurer{Hyperfine: tool, Workload: testWorkload(), Dir: dir, TempDir: dir}

	_, err := m.Measure(context.Background(), "/tmp/engine", 10, time.Minute)
	require.ErrorIs(t, err, bench.ErrMeasurementFailed)
}
