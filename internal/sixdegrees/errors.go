package sixdegrees

import "errors"

var (
	// ErrUnsolvablePair is returned when the path service answers 400:
	// the pairing itself is unsalvageable, and retrying other end
	// candidates against the same start page is pointless.
	ErrUnsolvablePair = errors.New("path service rejected the pairing")

	// ErrNoPath is returned when the service answers successfully but
	// carries no usable path.
	ErrNoPath = errors.New("path service returned no usable path")

	// ErrExhausted is returned when no valid pairing was found within
	// the safety limit. Fatal to the caller: the game cannot start.
	ErrExhausted = errors.New("failed to find a solvable start/end pair within safety limit")
)
