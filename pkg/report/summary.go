// Package report renders walk results for humans: a terminal summary
// table and an HTML throughput chart.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
)

// summaryWidth caps the commit summary column so one slow subject line
// cannot blow up the table.
const summaryWidth = 40

// WriteSummary renders the per-point outcome table, newest point first,
// with a success/failure tally in the footer.
func WriteSummary(w io.Writer, records []bench.OutcomeRecord) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"Point", "Summary", "Outcome", "Runs", "Mean ± Stddev", "NPS"})

	succeeded := 0

	for _, rec := range records {
		tbl.AppendRow(table.Row{
			rec.Point,
			truncate(rec.Summary, summaryWidth),
			outcomeCell(rec.Kind),
			runsCell(rec.Measurement),
			meanCell(rec.Measurement),
			npsCell(rec.Measurement),
		})

		if rec.Kind == bench.OutcomeSuccess {
			succeeded++
		}
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d points", len(records)), "", "",
		fmt.Sprintf("%d ok", succeeded), "",
		fmt.Sprintf("%d failed", len(records)-succeeded),
	})

	tbl.Render()
}

// outcomeCell colors the outcome kind: green for success, red otherwise.
func outcomeCell(kind bench.OutcomeKind) string {
	if kind == bench.OutcomeSuccess {
		return color.GreenString(string(kind))
	}

	return color.RedString(string(kind))
}

func runsCell(m *bench.Measurement) string {
	if m == nil {
		return "-"
	}

	return fmt.Sprintf("%d", m.Runs)
}

func meanCell(m *bench.Measurement) string {
	if m == nil {
		return "-"
	}

	return fmt.Sprintf("%.3fs ± %.3fs", m.MeanSec, m.StddevSec)
}

func npsCell(m *bench.Measurement) string {
	if m == nil || m.NodesPerSec <= 0 {
		return "-"
	}

	return humanize.CommafWithDigits(m.NodesPerSec, 0)
}

// truncate shortens s to at most n runes, ellipsized.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-3]) + "..."
}
