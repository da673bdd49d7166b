// Package log provides logging for Wiki Race, built on the standard
// slog package.
//
// The GameHandler wrapper does two things before records reach the
// underlying handler:
//   - Masks credential-bearing attributes (bearer tokens, cookies) so a
//     shared log never leaks a player's auth token.
//   - Truncates oversized string values. Sanitized article HTML runs to
//     hundreds of kilobytes; logging it whole makes logs unreadable and
//     slow, so values are capped at MaxValueLen with a marker suffix.
//
// # Usage
//
//	logger := log.NewGameLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
