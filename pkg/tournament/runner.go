package tournament

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes one tournament and streams fastchess output to the
// given writer.
type Runner struct {
	Config  Config
	Engines []EngineSpec

	// Stdout receives the filtered fastchess output.
	Stdout io.Writer

	Logger *slog.Logger
}

// Run builds the fastchess command and executes it in the workspace root.
// Cancellation kills the tournament process.
func (r *Runner) Run(ctx context.Context) error {
	command, err := r.Config.BuildCommand(r.Engines)
	if err != nil {
		return fmt.Errorf("build tournament command: %w", err)
	}

	logger := r.logger()

	for i, engine := range r.Engines {
		logger.Info("engine configured",
			"index", i,
			"name", engine.DisplayName(),
			"options", formatOptions(engine.Options),
		)
	}

	logger.Info("starting tournament",
		"engines", len(r.Engines),
		"rounds", r.Config.Rounds,
		"tc", r.Config.TimeControl,
		"concurrency", r.Config.Concurrency,
	)

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = r.Config.Workspace
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stdout

	runErr := cmd.Run()
	if runErr != nil {
		return fmt.Errorf("run fastchess: %w", runErr)
	}

	logger.Info("tournament finished", "results", r.Config.OutFile)

	return nil
}

// formatOptions renders an options map as "K=V, K=V" for log output.
func formatOptions(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}

	args := uciOptions(options)
	for i, arg := range args {
		args[i] = strings.TrimPrefix(arg, "option.")
	}

	return strings.Join(args, ", ")
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	return slog.Default()
}
