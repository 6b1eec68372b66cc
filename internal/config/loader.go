package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".benchwalk"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for benchwalk settings.
const envPrefix = "BENCHWALK"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("bench.target_duration", DefaultBenchTargetDuration)
	viperCfg.SetDefault("bench.warmup_runs", DefaultBenchWarmupRuns)
	viperCfg.SetDefault("bench.min_runs", DefaultBenchMinRuns)
	viperCfg.SetDefault("bench.default_runs", DefaultBenchDefaultRuns)
	viperCfg.SetDefault("bench.output", DefaultBenchOutput)
	viperCfg.SetDefault("bench.workspace", DefaultBenchWorkspace)
	viperCfg.SetDefault("bench.release_dir", DefaultBenchReleaseDir)
	viperCfg.SetDefault("bench.binary_prefix", DefaultBenchBinaryPrefix)
	viperCfg.SetDefault("bench.expected_nodes", DefaultBenchExpectedNodes)
	viperCfg.SetDefault("bench.perft_depth", DefaultBenchPerftDepth)
	viperCfg.SetDefault("bench.build", DefaultBenchBuild)
	viperCfg.SetDefault("bench.build_command", DefaultBenchBuildCommand)
	viperCfg.SetDefault("bench.build_timeout", DefaultBenchBuildTimeoutSec)
	viperCfg.SetDefault("bench.validate_timeout", DefaultBenchValidateTimeoutSec)
	viperCfg.SetDefault("bench.patch_files", []string{})
	viperCfg.SetDefault("bench.record_interrupted", DefaultBenchRecordInterrupted)

	viperCfg.SetDefault("tournament.time_control", DefaultTournamentTimeControl)
	viperCfg.SetDefault("tournament.rounds", DefaultTournamentRounds)
	viperCfg.SetDefault("tournament.concurrency", DefaultTournamentConcurrency)
	viperCfg.SetDefault("tournament.opening_plies", DefaultTournamentOpeningPlies)
	viperCfg.SetDefault("tournament.opening_book", DefaultTournamentOpeningBook)
	viperCfg.SetDefault("tournament.fastchess", DefaultTournamentFastchess)
	viperCfg.SetDefault("tournament.output", DefaultTournamentOutput)
	viperCfg.SetDefault("tournament.engines_file", DefaultTournamentEnginesFile)

	viperCfg.SetDefault("checkpoint.enabled", DefaultCheckpointEnabled)
	viperCfg.SetDefault("checkpoint.dir", "")
	viperCfg.SetDefault("checkpoint.resume", DefaultCheckpointResume)
	viperCfg.SetDefault("checkpoint.clear_prev", DefaultCheckpointClearPrev)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.debug_trace", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.log_json", false)
	viperCfg.SetDefault("observability.log_level", "info")
	viperCfg.SetDefault("observability.metrics_listen", "")
}
