package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wikiracer/wikirace/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.StatsReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeAggregates(&sb, report)
	w.writeRecentGames(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with player information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.StatsReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WIKIRACE STATS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Player:       %s\n", report.Stats.UserID))
	sb.WriteString(fmt.Sprintf("Games Played: %d\n", report.Stats.GamesPlayed))
	sb.WriteString("\n")
}

// writeAggregates writes the duration summary section.
func (w *SimpleWriter) writeAggregates(sb *strings.Builder, report *model.StatsReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DURATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.Stats.GamesPlayed == 0 {
		sb.WriteString("  No completed games yet\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  FASTEST:  %s\n", formatDuration(report.Stats.FastestDurationSeconds)))
	sb.WriteString(fmt.Sprintf("  AVERAGE:  %s\n", formatDuration(report.Stats.AverageDurationSeconds())))
	sb.WriteString(fmt.Sprintf("  TOTAL:    %s\n", formatDuration(int(report.Stats.TotalDurationSeconds))))
	sb.WriteString("\n")
}

// writeRecentGames writes the recent games section.
func (w *SimpleWriter) writeRecentGames(sb *strings.Builder, report *model.StatsReport) {
	if len(report.RecentGames) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RECENT GAMES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.RecentGames) == 0 {
		sb.WriteString("  No games recorded\n\n")
		return
	}

	for _, game := range report.RecentGames {
		sb.WriteString(fmt.Sprintf("  [%s] %s -> %s",
			humanStatus(game.Status), game.StartPage, game.EndPage))
		if game.Status == model.GameCompleted {
			sb.WriteString(fmt.Sprintf(" (%d clicks, %s)",
				game.Clicks, formatDuration(game.DurationSeconds)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}
