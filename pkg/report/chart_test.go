package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
	"github.com/Sumatoshi-tech/benchwalk/pkg/report"
)

func TestRenderNPSChart(t *testing.T) {
	var buf bytes.Buffer

	err := report.RenderNPSChart(&buf, sampleRecords())
	require.NoError(t, err)

	out := buf.String()

	assert.Contains(t, out, "<html>")
	assert.Contains(t, out, "Perft Throughput Across History")
	assert.Contains(t, out, "NPS")
	assert.Contains(t, out, "9119428")
	assert.Contains(t, out, "3f0d5f5")

	// Ledger is newest first; the chart runs oldest to newest.
	assert.Less(t, strings.Index(out, "3f0d5f5"), strings.Index(out, "9119428"))
}

func TestRenderNPSChartFailureGap(t *testing.T) {
	var buf bytes.Buffer

	err := report.RenderNPSChart(&buf, []bench.OutcomeRecord{
		bench.NewOutcomeRecord("deadbee", "", bench.OutcomeMeasurementFailed, "timed out"),
	})
	require.NoError(t, err)

	// Failed points render as the echarts gap marker, not a zero.
	assert.Contains(t, buf.String(), `"-"`)
}
