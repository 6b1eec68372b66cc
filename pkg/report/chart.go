package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
)

const (
	chartWidth  = "100%"
	chartHeight = "600px"
	lineWidth   = 2
)

// RenderNPSChart writes an HTML line chart of perft throughput across
// history, oldest point on the left. Failed points contribute a gap so
// regressions and outages stay visually distinct.
func RenderNPSChart(w io.Writer, records []bench.OutcomeRecord) error {
	labels, npsData := buildChartData(records)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Perft Throughput",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Perft Throughput Across History",
			Subtitle: "Nodes per second per historical point (gaps are failed points)",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Point"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Nodes / second"}),
	)

	line.SetXAxis(labels)
	line.AddSeries("NPS", npsData,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)

	err := line.Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// buildChartData reverses the ledger (walks record newest first) and maps
// non-success points to the echarts gap marker.
func buildChartData(records []bench.OutcomeRecord) (labels []string, npsData []opts.LineData) {
	labels = make([]string, len(records))
	npsData = make([]opts.LineData, len(records))

	for i := range records {
		rec := records[len(records)-1-i]

		labels[i] = rec.Point

		if rec.Kind == bench.OutcomeSuccess && rec.Measurement != nil {
			npsData[i] = opts.LineData{Value: rec.Measurement.NodesPerSec}
		} else {
			npsData[i] = opts.LineData{Value: "-"}
		}
	}

	return labels, npsData
}
