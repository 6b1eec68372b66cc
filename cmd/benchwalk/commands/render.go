package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
	"github.com/Sumatoshi-tech/benchwalk/pkg/report"
)

const renderDirPerm = 0o750

// ErrEmptyLedger is returned when the results file holds no records.
var ErrEmptyLedger = errors.New("results file holds no records")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var outputPath string

	var summary bool

	cmd := &cobra.Command{
		Use:   "render <results-file>",
		Short: "Render a results ledger as an HTML throughput chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRender(args[0], outputPath, summary)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "benchmark_results.html", "output HTML file")
	cmd.Flags().BoolVar(&summary, "summary", true, "also print the outcome table")

	return cmd
}

func runRender(resultsPath, outputPath string, summary bool) error {
	records, err := bench.LoadRecords(resultsPath)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return ErrEmptyLedger
	}

	if summary {
		report.WriteSummary(os.Stdout, records)
	}

	mkErr := os.MkdirAll(filepath.Dir(outputPath), renderDirPerm)
	if mkErr != nil {
		return fmt.Errorf("create output dir: %w", mkErr)
	}

	out, createErr := os.Create(outputPath)
	if createErr != nil {
		return fmt.Errorf("create output file: %w", createErr)
	}
	defer out.Close()

	renderErr := report.RenderNPSChart(out, records)
	if renderErr != nil {
		return renderErr
	}

	fmt.Fprintf(os.Stdout, "Chart written to %s\n", outputPath)

	return nil
}
