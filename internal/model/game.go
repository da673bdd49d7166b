package model

import "time"

// GameStatus is the lifecycle state of a persisted game session.
//
// Design decision: We use string constants rather than iota because the
// status is stored in SQLite and returned over the API; a readable value
// survives schema inspection and avoids numbering accidents.
type GameStatus string

const (
	// GameInProgress is a game that has started and not yet finished.
	GameInProgress GameStatus = "IN_PROGRESS"

	// GameCompleted is a game whose player reached the target page.
	GameCompleted GameStatus = "COMPLETED"

	// GameAbandoned is a game the player gave up on, or one that sat
	// in progress past the staleness threshold and was swept.
	GameAbandoned GameStatus = "ABANDONED"
)

// Placeholder page name stored before the pairing is chosen.
// The start route creates the row first so the game has an ID to
// report against; update fills in the real pages.
const UnknownPage = "UNKNOWN"

// Game is a persisted game session.
type Game struct {
	// ID is the game's ULID.
	ID string `json:"id"`

	// UserID identifies the authenticated player.
	UserID string `json:"userId"`

	// StartPage and EndPage are article titles. UnknownPage until the
	// pairing has been reported via the update operation.
	StartPage string `json:"startPage"`
	EndPage   string `json:"endPage"`

	// Clicks is the number of navigation moves the player made.
	Clicks int `json:"clicks"`

	// Status is the current lifecycle state.
	Status GameStatus `json:"status"`

	// StartTime is when the game row was created.
	StartTime time.Time `json:"startTime"`

	// EndTime is when the game finished. Zero while in progress.
	EndTime time.Time `json:"endTime,omitzero"`

	// DurationSeconds is the completed game's wall-clock duration,
	// floored at one second. Zero while in progress.
	DurationSeconds int `json:"durationSeconds,omitempty"`
}

// Finished reports whether the game has been finalized.
func (g *Game) Finished() bool {
	return g.Status != GameInProgress
}
