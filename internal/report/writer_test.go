package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wikiracer/wikirace/internal/model"
)

// sampleReport builds a report with two completed games and one
// abandoned one.
func sampleReport() *model.StatsReport {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return &model.StatsReport{
		Stats: model.UserStats{
			UserID:                 "alice",
			GamesPlayed:            2,
			TotalDurationSeconds:   200,
			FastestDurationSeconds: 60,
		},
		RecentGames: []model.Game{
			{
				ID: "01A", UserID: "alice",
				StartPage: "Dog", EndPage: "Cat",
				Clicks: 4, Status: model.GameCompleted,
				StartTime: start, EndTime: start.Add(140 * time.Second), DurationSeconds: 140,
			},
			{
				ID: "01B", UserID: "alice",
				StartPage: "Tea", EndPage: "Iron",
				Clicks: 2, Status: model.GameAbandoned,
				StartTime: start,
			},
		},
	}
}

// TestSimpleWriter tests the plain-text format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders all sections", func(t *testing.T) {
		t.Parallel()

		var buf strings.Builder
		n, err := NewSimpleWriter(&buf).Write(sampleReport())
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"WIKIRACE STATS",
			"Player:       alice",
			"Games Played: 2",
			"FASTEST:  1m0s",
			"AVERAGE:  1m40s",
			"TOTAL:    3m20s",
			"[Completed] Dog -> Cat (4 clicks, 2m20s)",
			"[Abandoned] Tea -> Iron",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		// Abandoned games carry no duration.
		if strings.Contains(out, "Tea -> Iron (") {
			t.Errorf("abandoned game should not show clicks: %s", out)
		}
	})

	t.Run("empty report", func(t *testing.T) {
		t.Parallel()

		var buf strings.Builder
		report := &model.StatsReport{Stats: model.UserStats{UserID: "bob"}}
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "No completed games yet") {
			t.Errorf("output missing empty marker:\n%s", out)
		}
		if strings.Contains(out, "RECENT GAMES") {
			t.Errorf("empty games section should be hidden:\n%s", out)
		}
	})

	t.Run("show empty sections", func(t *testing.T) {
		t.Parallel()

		var buf strings.Builder
		report := &model.StatsReport{Stats: model.UserStats{UserID: "bob"}}
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if !strings.Contains(buf.String(), "No games recorded") {
			t.Errorf("output missing empty games marker:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the markdown format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Wikirace Stats",
		"## Durations",
		"## Recent Games",
		"`alice`",
		"1m0s",
		"| Dog",
		"Abandoned",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestJSONWriter tests round-trippable JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded model.StatsReport
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Stats.UserID != "alice" || len(decoded.RecentGames) != 2 {
		t.Errorf("decoded %+v", decoded)
	}
}

// TestMultiWriter tests fan-out and error propagation.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, md strings.Builder
		multi := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md))
		if _, err := multi.Write(sampleReport()); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if text.Len() == 0 || md.Len() == 0 {
			t.Error("one of the writers got no output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		failing := NewSimpleWriter(failWriter{})
		var buf strings.Builder
		multi := NewMultiWriter(failing, NewSimpleWriter(&buf))
		if _, err := multi.Write(sampleReport()); err == nil {
			t.Fatal("expected error")
		}
		if buf.Len() != 0 {
			t.Error("writer after the failure should not run")
		}
	})
}

// TestHumanStatus tests the status humanizer.
func TestHumanStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status model.GameStatus
		want   string
	}{
		{model.GameInProgress, "In Progress"},
		{model.GameCompleted, "Completed"},
		{model.GameAbandoned, "Abandoned"},
	}
	for _, tt := range tests {
		if got := humanStatus(tt.status); got != tt.want {
			t.Errorf("humanStatus(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

// TestFormatDuration tests duration rendering.
func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m0s"},
		{140, "2m20s"},
		{3605, "60m5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

// failWriter always fails.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}
