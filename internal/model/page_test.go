package model

import "testing"

// TestPathDegrees tests hop counting.
func TestPathDegrees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path Path
		want int
	}{
		{name: "empty path", path: nil, want: 0},
		{name: "single page", path: Path{"Dog"}, want: 0},
		{name: "direct link", path: Path{"Dog", "Cat"}, want: 1},
		{name: "three hops", path: Path{"Dog", "Mammal", "Fur", "Cat"}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.path.Degrees(); got != tt.want {
				t.Errorf("Degrees() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestPathValid tests structural path validation.
func TestPathValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path Path
		want bool
	}{
		{name: "empty", path: nil, want: false},
		{name: "single entry", path: Path{"Dog"}, want: false},
		{name: "two distinct pages", path: Path{"Dog", "Cat"}, want: true},
		{name: "same endpoints", path: Path{"Dog", "Canine", "Dog"}, want: false},
		{name: "same endpoints case-insensitive", path: Path{"Dog", "Canine", "dog"}, want: false},
		{name: "underscore variant endpoints", path: Path{"New_York", "Albany", "New York"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.path.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestTitlesEqual tests title comparison semantics.
func TestTitlesEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"Dog", "dog", true},
		{"New York", "New_York", true},
		{"Dog", "Cat", false},
		{"", "", true},
	}

	for _, tt := range tests {
		if got := TitlesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("TitlesEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// TestPageURL tests canonical URL construction.
func TestPageURL(t *testing.T) {
	t.Parallel()

	if got := PageURL("Dog"); got != "https://en.wikipedia.org/wiki/Dog" {
		t.Errorf("unexpected URL: %s", got)
	}
	// Titles with spaces must be escaped but remain a single path segment.
	got := PageURL("New York City")
	if got != "https://en.wikipedia.org/wiki/New%20York%20City" {
		t.Errorf("unexpected URL: %s", got)
	}
}

// TestUserStatsAverage tests average duration rounding.
func TestUserStatsAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats UserStats
		want  int
	}{
		{name: "no games", stats: UserStats{}, want: 0},
		{name: "single game", stats: UserStats{GamesPlayed: 1, TotalDurationSeconds: 90}, want: 90},
		{name: "rounds to nearest", stats: UserStats{GamesPlayed: 2, TotalDurationSeconds: 91}, want: 46},
		{name: "rounds down", stats: UserStats{GamesPlayed: 3, TotalDurationSeconds: 100}, want: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.stats.AverageDurationSeconds(); got != tt.want {
				t.Errorf("AverageDurationSeconds() = %d, want %d", got, tt.want)
			}
		})
	}
}
