package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/wikiracer/wikirace/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.StatsReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAggregates(md, report)
	w.writeRecentGames(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with player information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.StatsReport) {
	md.H1("Wikirace Stats")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Player", "`" + report.Stats.UserID + "`"},
			{"Games Played", strconv.Itoa(report.Stats.GamesPlayed)},
		},
	})
	md.PlainText("")
}

// writeAggregates writes the duration summary section.
func (w *MarkdownWriter) writeAggregates(md *markdown.Markdown, report *model.StatsReport) {
	md.H2("Durations")
	md.PlainText("")

	if report.Stats.GamesPlayed == 0 {
		md.PlainText("No completed games yet.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Fastest", formatDuration(report.Stats.FastestDurationSeconds)},
			{"Average", formatDuration(report.Stats.AverageDurationSeconds())},
			{"Total", formatDuration(int(report.Stats.TotalDurationSeconds))},
		},
	})
	md.PlainText("")
}

// writeRecentGames writes the recent games section.
func (w *MarkdownWriter) writeRecentGames(md *markdown.Markdown, report *model.StatsReport) {
	if len(report.RecentGames) == 0 {
		return
	}

	md.H2("Recent Games")
	md.PlainText("")

	rows := make([][]string, 0, len(report.RecentGames))
	for _, game := range report.RecentGames {
		duration := "-"
		if game.Status == model.GameCompleted {
			duration = formatDuration(game.DurationSeconds)
		}
		rows = append(rows, []string{
			game.StartPage,
			game.EndPage,
			humanStatus(game.Status),
			strconv.Itoa(game.Clicks),
			duration,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Start", "End", "Status", "Clicks", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}
