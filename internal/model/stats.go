package model

// UserStats holds per-player aggregate statistics.
// Totals are updated transactionally when a game finishes so that the
// aggregates never drift from the underlying game rows.
type UserStats struct {
	// UserID identifies the player.
	UserID string `json:"userId"`

	// GamesPlayed is the number of completed games.
	GamesPlayed int `json:"gamesPlayed"`

	// TotalDurationSeconds is the sum of all completed game durations.
	// Stored as int64 because long-lived accounts can overflow int32.
	TotalDurationSeconds int64 `json:"totalDurationSeconds"`

	// FastestDurationSeconds is the shortest completed game, or zero
	// when no game has been completed.
	FastestDurationSeconds int `json:"fastestDurationSeconds"`
}

// AverageDurationSeconds returns the mean completed-game duration,
// rounded to the nearest second, or zero when no games were played.
func (s *UserStats) AverageDurationSeconds() int {
	if s.GamesPlayed == 0 {
		return 0
	}
	return int((s.TotalDurationSeconds + int64(s.GamesPlayed)/2) / int64(s.GamesPlayed))
}

// StatsReport bundles everything the stats report writers render:
// the player's aggregates and their most recent games.
type StatsReport struct {
	// Stats holds the player's aggregate statistics.
	Stats UserStats `json:"stats"`

	// RecentGames lists the player's latest games, newest first.
	RecentGames []Game `json:"recentGames,omitempty"`
}

// FinishSummary is returned to the player when a game completes.
// It mirrors the stats row after the finishing game was folded in.
type FinishSummary struct {
	DurationSeconds        int `json:"durationSeconds"`
	FastestDurationSeconds int `json:"fastestDurationSeconds"`
	AverageDurationSeconds int `json:"averageDurationSeconds"`
	GamesPlayed            int `json:"gamesPlayed"`
}
