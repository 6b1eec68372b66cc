package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/benchwalk/internal/config"
	"github.com/Sumatoshi-tech/benchwalk/pkg/tournament"
)

// tournamentFlags holds the tournament subcommand's flag values.
type tournamentFlags struct {
	configPath  string
	repo        string
	enginesFile string
	rounds      int
	concurrency int
	timeControl string
}

// NewTournamentCommand creates the tournament subcommand.
func NewTournamentCommand() *cobra.Command {
	flags := &tournamentFlags{}

	cmd := &cobra.Command{
		Use:   "tournament",
		Short: "Run a fastchess round-robin between engine versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadTournamentConfig(cmd, flags)
			if err != nil {
				return err
			}

			return runTournament(cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&flags.repo, "repo", "r", "", "engine repository path")
	cmd.Flags().StringVarP(&flags.enginesFile, "engines", "e", config.DefaultTournamentEnginesFile,
		"YAML file listing tournament engines")
	cmd.Flags().IntVar(&flags.rounds, "rounds", config.DefaultTournamentRounds, "number of rounds")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", config.DefaultTournamentConcurrency,
		"games played in parallel")
	cmd.Flags().StringVar(&flags.timeControl, "tc", config.DefaultTournamentTimeControl, "per-game time control")

	return cmd
}

func loadTournamentConfig(cmd *cobra.Command, flags *tournamentFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("repo") {
		cfg.Bench.Workspace = flags.repo
	}

	if cmd.Flags().Changed("engines") {
		cfg.Tournament.EnginesFile = flags.enginesFile
	}

	if cmd.Flags().Changed("rounds") {
		cfg.Tournament.Rounds = flags.rounds
	}

	if cmd.Flags().Changed("concurrency") {
		cfg.Tournament.Concurrency = flags.concurrency
	}

	if cmd.Flags().Changed("tc") {
		cfg.Tournament.TimeControl = flags.timeControl
	}

	return cfg, nil
}

func runTournament(cfg *config.Config, _ *tournamentFlags) error {
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

	workspace, err := filepath.Abs(cfg.Bench.Workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace path: %w", err)
	}

	engines, err := tournament.LoadEngines(cfg.Tournament.EnginesFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &tournament.Runner{
		Config: tournament.Config{
			Fastchess:   cfg.Tournament.Fastchess,
			Workspace:   workspace,
			ReleaseDir:  cfg.Bench.ReleaseDir,
			Prefix:      cfg.Bench.BinaryPrefix,
			TimeControl: cfg.Tournament.TimeControl,
			Rounds:      cfg.Tournament.Rounds,
			Concurrency: cfg.Tournament.Concurrency,
			OutFile:     cfg.Tournament.Output,
			BookFile:    cfg.Tournament.OpeningBook,
			BookPlies:   cfg.Tournament.OpeningPlies,
		},
		Engines: engines,
		Stdout:  os.Stdout,
		Logger:  providers.Logger,
	}

	return runner.Run(ctx)
}
