package report_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
	"github.com/Sumatoshi-tech/benchwalk/pkg/report"
)

func sampleRecords() []bench.OutcomeRecord {
	ok := bench.NewOutcomeRecord("9119428", "tune eval weights", bench.OutcomeSuccess, "")
	ok.Measurement = &bench.Measurement{
		MeanSec:     0.5,
		StddevSec:   0.01,
		Runs:        60,
		NodesPerSec: 9731218,
	}

	failed := bench.NewOutcomeRecord("3f0d5f5", "fix castling rights", bench.OutcomeBuildFailed, "cargo exited 101")

	return []bench.OutcomeRecord{ok, failed}
}

func TestWriteSummary(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer

	report.WriteSummary(&buf, sampleRecords())

	out := buf.String()

	assert.Contains(t, out, "9119428")
	assert.Contains(t, out, "3f0d5f5")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "build_failed")
	assert.Contains(t, out, "0.500s ± 0.010s")
	assert.Contains(t, out, "9,731,218")

	// Footer tally.
	assert.Contains(t, out, "2 points")
	assert.Contains(t, out, "1 ok")
	assert.Contains(t, out, "1 failed")
}

func TestWriteSummaryFailedCells(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer

	report.WriteSummary(&buf, []bench.OutcomeRecord{
		bench.NewOutcomeRecord("deadbee", "", bench.OutcomeValidationFailed, "no_result_found"),
	})

	out := buf.String()

	assert.Contains(t, out, "validation_failed")
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "0 ok")
	assert.Contains(t, out, "1 failed")
}

func TestWriteSummaryTruncatesLongSubjects(t *testing.T) {
	color.NoColor = true

	long := "a commit subject line that keeps going well past the column budget"
	rec := bench.NewOutcomeRecord("9119428", long, bench.OutcomeSuccess, "")

	var buf bytes.Buffer

	report.WriteSummary(&buf, []bench.OutcomeRecord{rec})

	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), "...")
}
