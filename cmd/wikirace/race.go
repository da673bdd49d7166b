package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// NewRaceCmd creates the race command.
func NewRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Pick one start/end article pairing",
		Long: `Race runs a single pairing selection against the live services and
prints the chosen start and end articles together with the shortest
link path connecting them.

Examples:
  # Pick a pairing with default limits
  wikirace race

  # Require at most three hops
  wikirace race --max-degrees 3

  # Verify the path is walkable before accepting it
  wikirace race --validate-path`,
		Args: cobra.NoArgs,
		RunE: runRaceCmd,
	}

	addServiceFlags(cmd)

	return cmd
}

// runRaceCmd executes the race command.
func runRaceCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	wikiClient := newWikiClient(cfg, logger)
	selector := newSelector(cfg, wikiClient, logger)

	result, err := selector.Choose(cmd.Context())
	if err != nil {
		return fmt.Errorf("pairing selection failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Start:   %s\n", result.StartPage.Title)
	fmt.Fprintf(out, "         %s\n", result.StartPage.FullURL)
	fmt.Fprintf(out, "End:     %s\n", result.EndPage.Title)
	fmt.Fprintf(out, "         %s\n", result.EndPage.FullURL)
	fmt.Fprintf(out, "Degrees: %d\n", result.Degrees)
	fmt.Fprintf(out, "Path:    %s\n", strings.Join(result.Path, " -> "))

	return nil
}
