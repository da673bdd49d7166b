// Package main provides the entry point for the Wiki Race CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wikiracer/wikirace/internal/config"
	"github.com/wikiracer/wikirace/internal/log"
)

// NewRootCmd creates the root command for Wiki Race.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikirace",
		Short: "Wikipedia navigation game backend",
		Long: `Wiki Race pairs random Wikipedia articles connected by a shortest
link path, serves sanitized article content for in-game navigation,
and tracks per-player statistics.

The serve command runs the HTTP API; race and stats are one-shot
commands against the same services and database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewRaceCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger used by all commands. The
// game handler masks credentials and truncates article-sized values.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewGameLogger(os.Stderr, verbose)
}

// buildConfig creates a Config from cobra command flags and the
// optional config file.
//
// Flags the user set explicitly win over config file values, which win
// over defaults. The file is applied first and explicit flags are
// re-applied on top.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = cfgPath

	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if explicit {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyFlagOverrides copies explicitly-set flags onto the config.
// Only flags the user changed are applied, so config file values
// survive unless overridden on the command line.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("listen") {
		if cfg.ListenAddr, err = flags.GetString("listen"); err != nil {
			return err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("max-degrees") {
		if cfg.MaxDegrees, err = flags.GetInt("max-degrees"); err != nil {
			return err
		}
	}
	if flags.Changed("end-attempts") {
		if cfg.EndAttemptsPerStart, err = flags.GetInt("end-attempts"); err != nil {
			return err
		}
	}
	if flags.Changed("safety-limit") {
		if cfg.SafetyLimit, err = flags.GetInt("safety-limit"); err != nil {
			return err
		}
	}
	if flags.Changed("validate-path") {
		if cfg.ValidatePath, err = flags.GetBool("validate-path"); err != nil {
			return err
		}
	}
	if flags.Changed("cache-size") {
		if cfg.CacheSize, err = flags.GetInt("cache-size"); err != nil {
			return err
		}
	}
	if flags.Changed("wikipedia-api") {
		if cfg.WikipediaAPI, err = flags.GetString("wikipedia-api"); err != nil {
			return err
		}
	}
	if flags.Changed("six-degrees-api") {
		if cfg.SixDegreesAPI, err = flags.GetString("six-degrees-api"); err != nil {
			return err
		}
	}

	return nil
}

// addServiceFlags registers the flags shared by commands that talk to
// the upstream services.
func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikirace in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each upstream request")
	cmd.Flags().Int("max-degrees", config.DefaultMaxDegrees,
		"Maximum accepted hops between start and end page")
	cmd.Flags().Int("end-attempts", config.DefaultEndAttemptsPerStart,
		"End candidates tried per start page")
	cmd.Flags().Int("safety-limit", config.DefaultSafetyLimit,
		"Maximum start pages sampled before giving up")
	cmd.Flags().Bool("validate-path", false,
		"Validate candidate paths hop by hop against live article content")
	cmd.Flags().Int("cache-size", config.DefaultCacheSize,
		"Sanitized-content cache capacity in entries")
	cmd.Flags().String("wikipedia-api", config.DefaultWikipediaAPI,
		"Base URL of the Wikipedia action API")
	cmd.Flags().String("six-degrees-api", config.DefaultSixDegreesAPI,
		"Base URL of the shortest-path service")
}
