package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wikiracer/wikirace/internal/database"
	"github.com/wikiracer/wikirace/internal/model"
	"github.com/wikiracer/wikirace/internal/report"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <player-id>",
		Short: "Show a player's game statistics",
		Long: `Stats renders a player's aggregate statistics and recent games from
the local database.

Examples:
  # Plain-text stats for a player
  wikirace stats alice

  # Markdown, written to a file
  wikirace stats alice --markdown --output stats.md

  # JSON for scripting
  wikirace stats alice --json`,
		Args: cobra.ExactArgs(1),
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikirace in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Directory for the SQLite database (default: XDG data directory)")
	cmd.Flags().IntP("games", "g", 10,
		"Number of recent games to include")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asMarkdown && asJSON {
		return fmt.Errorf("--markdown and --json are mutually exclusive")
	}
	games, err := cmd.Flags().GetInt("games")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	// The database must already exist; stats never creates one.
	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // read-only use

	userID := args[0]
	ctx := cmd.Context()

	stats, err := db.UserStats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	recent, err := db.RecentGames(ctx, userID, games)
	if err != nil {
		return fmt.Errorf("failed to read recent games: %w", err)
	}

	statsReport := &model.StatsReport{
		Stats:       *stats,
		RecentGames: recent,
	}

	out, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := newStatsWriter(out, asMarkdown, asJSON)
	if _, err := writer.Write(statsReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// newStatsWriter picks the report format.
func newStatsWriter(out io.Writer, asMarkdown, asJSON bool) report.Writer {
	switch {
	case asMarkdown:
		return report.NewMarkdownWriter(out)
	case asJSON:
		return report.NewJSONWriter(out)
	default:
		return report.NewSimpleWriter(out)
	}
}

// openOutput returns the report destination: the given file, or the
// command's stdout when no path is set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from the user's own flag
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
