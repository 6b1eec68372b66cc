// Package commands implements the benchwalk CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/benchwalk/internal/config"
	"github.com/Sumatoshi-tech/benchwalk/pkg/bench"
	"github.com/Sumatoshi-tech/benchwalk/pkg/checkpoint"
	"github.com/Sumatoshi-tech/benchwalk/pkg/gitenv"
	"github.com/Sumatoshi-tech/benchwalk/pkg/observability"
	"github.com/Sumatoshi-tech/benchwalk/pkg/report"
	"github.com/Sumatoshi-tech/benchwalk/pkg/version"
)

// metricsReadTimeout bounds request header reads on the scrape endpoint.
const metricsReadTimeout = 10 * time.Second

// ErrNoPoints is returned when enumeration yields an empty history.
var ErrNoPoints = errors.New("no historical points to benchmark")

// walkFlags holds the walk subcommand's flag values.
type walkFlags struct {
	configPath  string
	repo        string
	duration    float64
	warmup      int
	minRuns     int
	output      string
	build       bool
	limit       int
	versions    []string
	firstParent bool
	patchFiles  []string
	fresh       bool
}

// NewWalkCommand creates the walk subcommand.
func NewWalkCommand() *cobra.Command {
	flags := &walkFlags{}

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Benchmark historical engine versions with a fixed perft workload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadWalkConfig(cmd, flags)
			if err != nil {
				return err
			}

			return runWalk(cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&flags.repo, "repo", "r", "", "engine repository path")
	cmd.Flags().Float64VarP(&flags.duration, "duration", "d", config.DefaultBenchTargetDuration,
		"target duration for each point's measurement in seconds")
	cmd.Flags().IntVarP(&flags.warmup, "warmup", "w", config.DefaultBenchWarmupRuns, "number of warmup runs")
	cmd.Flags().IntVar(&flags.minRuns, "min-runs", config.DefaultBenchMinRuns, "minimum number of runs per point")
	cmd.Flags().StringVarP(&flags.output, "output", "o", config.DefaultBenchOutput, "output file for results")
	cmd.Flags().BoolVar(&flags.build, "build", config.DefaultBenchBuild,
		"build each point from source instead of locating prebuilt binaries")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "walk at most this many points (0 = all)")
	cmd.Flags().StringSliceVarP(&flags.versions, "versions", "v", nil, "override the list of versions to test")
	cmd.Flags().BoolVar(&flags.firstParent, "first-parent", true, "follow only first parents of merges")
	cmd.Flags().StringSliceVar(&flags.patchFiles, "patch-file", nil,
		"files restored from the pre-walk state before validating each point")
	cmd.Flags().BoolVar(&flags.fresh, "fresh", false, "discard any existing checkpoint and start over")

	return cmd
}

// loadWalkConfig loads configuration and applies explicit flag overrides.
func loadWalkConfig(cmd *cobra.Command, flags *walkFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("repo") {
		cfg.Bench.Workspace = flags.repo
	}

	if cmd.Flags().Changed("duration") {
		cfg.Bench.TargetDuration = flags.duration
	}

	if cmd.Flags().Changed("warmup") {
		cfg.Bench.WarmupRuns = flags.warmup
	}

	if cmd.Flags().Changed("min-runs") {
		cfg.Bench.MinRuns = flags.minRuns
	}

	if cmd.Flags().Changed("output") {
		cfg.Bench.Output = flags.output
	}

	if cmd.Flags().Changed("build") {
		cfg.Bench.Build = flags.build
	}

	if cmd.Flags().Changed("patch-file") {
		cfg.Bench.PatchFiles = flags.patchFiles
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// runWalk wires the full walk pipeline and executes it under signal-driven
// cancellation. The ledger is persisted on every exit path.
func runWalk(cfg *config.Config, flags *walkFlags) error {
	providers, err := initObservability(cfg)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			fmt.Fprintf(os.Stderr, "observability shutdown: %v\n", shutdownErr)
		}
	}()

	logger := providers.Logger

	metrics := observability.NewWalkMetrics()
	serveMetrics(cfg.Observability.MetricsListen, metrics, logger)

	workspace, err := filepath.Abs(cfg.Bench.Workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace path: %w", err)
	}

	repo, err := gitenv.Open(workspace)
	if err != nil {
		return fmt.Errorf("open engine repository: %w", err)
	}

	defer repo.Free()

	points, err := collectPoints(repo, cfg, flags, logger)
	if err != nil {
		return err
	}

	logger.Info("points enumerated", "count", len(points), "build", cfg.Bench.Build)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	walker, source, manager := buildWalker(repo, workspace, points, cfg, flags, providers, metrics)

	resume := cfg.Checkpoint.Resume && !flags.fresh

	resumed := restoreCheckpoint(manager, source, walker.Ledger, workspace, pointIDs(points), resume, logger)
	if resumed > 0 {
		logger.Info("resumed from checkpoint", "completed", resumed, "remaining", len(points)-resumed)
	}

	walkErr := walker.Walk(ctx)

	// Persist before anything else: partial results survive interruption
	// and even a failed workspace restore.
	saveErr := walker.Ledger.SaveTo(cfg.Bench.Output)
	if saveErr != nil {
		logger.Error("saving results failed", "path", cfg.Bench.Output, "error", saveErr)
	} else {
		logger.Info("results saved", "path", cfg.Bench.Output, "records", walker.Ledger.Len())
	}

	report.WriteSummary(os.Stdout, walker.Ledger.Records())

	if walkErr == nil && manager != nil {
		clearErr := manager.Clear()
		if clearErr != nil {
			logger.Warn("clearing checkpoint failed", "error", clearErr)
		}
	}

	if walkErr != nil && errors.Is(walkErr, context.Canceled) {
		logger.Warn("walk interrupted, partial results kept")

		return nil
	}

	return errors.Join(walkErr, saveErr)
}

// initObservability translates file configuration into providers.
func initObservability(cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.DebugTrace = cfg.Observability.DebugTrace
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.LogJSON = cfg.Observability.LogJSON
	obsCfg.LogLevel = parseLogLevel(cfg.Observability.LogLevel)

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	slog.SetDefault(providers.Logger)

	return providers, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// serveMetrics starts the Prometheus scrape endpoint when configured.
func serveMetrics(listen string, metrics *observability.WalkMetrics, logger *slog.Logger) {
	if listen == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: metricsReadTimeout}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Warn("metrics endpoint failed", "listen", listen, "error", serveErr)
		}
	}()

	logger.Info("metrics endpoint up", "listen", listen)
}

// collectPoints enumerates history from HEAD, or resolves an explicit
// version list. Enumeration failure is the walk's only fatal error.
func collectPoints(
	repo *gitenv.Repository, cfg *config.Config, flags *walkFlags, logger *slog.Logger,
) ([]gitenv.Point, error) {
	if len(flags.versions) > 0 {
		return resolveVersions(repo, cfg, flags.versions, logger)
	}

	points, err := repo.EnumeratePoints(gitenv.HistoryOptions{
		FirstParent: flags.firstParent,
		Limit:       flags.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate points: %w", err)
	}

	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	return points, nil
}

// resolveVersions maps explicit version specs to points. In locate-only
// mode an unresolvable spec degrades to a literal artifact name; in build
// mode it is fatal, since there is nothing to check out.
func resolveVersions(
	repo *gitenv.Repository, cfg *config.Config, versions []string, logger *slog.Logger,
) ([]gitenv.Point, error) {
	points := make([]gitenv.Point, 0, len(versions))

	for _, spec := range versions {
		point, err := repo.ResolvePoint(spec)
		if err != nil {
			if cfg.Bench.Build {
				return nil, fmt.Errorf("resolve version %s: %w", spec, err)
			}

			logger.Warn("version not in history, matching artifacts by name", "version", spec)

			point = gitenv.Point{Label: spec}
		}

		points = append(points, point)
	}

	return points, nil
}

// buildWalker assembles the walker and its collaborators from configuration.
func buildWalker(
	repo *gitenv.Repository,
	workspace string,
	points []gitenv.Point,
	cfg *config.Config,
	flags *walkFlags,
	providers observability.Providers,
	metrics *observability.WalkMetrics,
) (*bench.Walker, *gitenv.SliceSource, *checkpoint.Manager) {
	workload := bench.Workload{
		PerftDepth:    cfg.Bench.PerftDepth,
		ExpectedNodes: cfg.Bench.ExpectedNodes,
	}

	validateTimeout := time.Duration(cfg.Bench.ValidateTimeoutSec) * time.Second

	source := gitenv.NewSliceSource(points)

	walker := &bench.Walker{
		Source: source,
		Guard:  repo,
		Resolver: &bench.Resolver{
			Workspace:    workspace,
			ReleaseDir:   cfg.Bench.ReleaseDir,
			Prefix:       cfg.Bench.BinaryPrefix,
			Build:        cfg.Bench.Build,
			BuildCommand: cfg.Bench.BuildCommand,
			BuildTimeout: time.Duration(cfg.Bench.BuildTimeoutSec) * time.Second,
		},
		Validator: &bench.Validator{
			Workload: workload,
			Timeout:  validateTimeout,
			Dir:      workspace,
		},
		Calibrator: &bench.Calibrator{
			Workload:       workload,
			TargetDuration: cfg.Bench.TargetDuration,
			MinRuns:        cfg.Bench.MinRuns,
			TrialTimeout:   validateTimeout,
			Dir:            workspace,
		},
		Measurer: &bench.Measurer{
			Workload:   workload,
			WarmupRuns: cfg.Bench.WarmupRuns,
			Dir:        workspace,
		},
		Ledger:            bench.NewLedger(),
		PatchFiles:        cfg.Bench.PatchFiles,
		DefaultRuns:       cfg.Bench.DefaultRuns,
		TargetDurationSec: cfg.Bench.TargetDuration,
		RecordInterrupted: cfg.Bench.RecordInterrupted,
		Logger:            providers.Logger,
		Tracer:            providers.Tracer,
		Metrics:           metrics,
	}

	if cfg.Bench.Build {
		walker.Workspace = repo
	}

	var manager *checkpoint.Manager

	if cfg.Checkpoint.Enabled {
		baseDir := cfg.Checkpoint.Dir
		if baseDir == "" {
			baseDir = checkpoint.DefaultDir()
		}

		manager = checkpoint.NewManager(baseDir, checkpoint.RepoHash(workspace))

		ids := pointIDs(points)

		walker.AfterStep = func(visited int) {
			state := &checkpoint.WalkState{NextIndex: visited, Records: walker.Ledger.Records()}

			saveErr := manager.Save(state, workspace, ids)
			if saveErr != nil {
				providers.Logger.Warn("checkpoint save failed", "error", saveErr)
			}
		}
	}

	if (flags.fresh || cfg.Checkpoint.ClearPrev) && manager != nil {
		clearErr := manager.Clear()
		if clearErr != nil {
			providers.Logger.Warn("clearing checkpoint failed", "error", clearErr)
		}
	}

	return walker, source, manager
}

// restoreCheckpoint resumes a previous walk when a matching checkpoint
// exists. Returns the number of already-completed points.
func restoreCheckpoint(
	manager *checkpoint.Manager,
	source *gitenv.SliceSource,
	ledger *bench.Ledger,
	workspace string,
	ids []string,
	resume bool,
	logger *slog.Logger,
) int {
	if manager == nil || !resume || !manager.Exists() {
		return 0
	}

	validateErr := manager.Validate(workspace, ids)
	if validateErr != nil {
		logger.Warn("checkpoint does not match this walk, starting over", "error", validateErr)

		return 0
	}

	state, loadErr := manager.Load()
	if loadErr != nil {
		logger.Warn("checkpoint load failed, starting over", "error", loadErr)

		return 0
	}

	ledger.Replace(state.Records)
	source.Skip(state.NextIndex)

	return state.NextIndex
}

// pointIDs projects points to their identifiers.
func pointIDs(points []gitenv.Point) []string {
	ids := make([]string, len(points))
	for i, point := range points {
		ids[i] = point.ID()
	}

	return ids
}
