package database

import "errors"

var (
	// ErrGameNotFound is returned when no game matches the given ID
	// and owner.
	ErrGameNotFound = errors.New("game not found")

	// ErrGameFinished is returned when an operation requires an
	// in-progress game but the game was already finalized.
	ErrGameFinished = errors.New("game already finished")
)
