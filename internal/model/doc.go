// Package model defines the core data structures used throughout Wiki Race.
//
// This package contains the following main types:
//   - Page: A reference to a Wikipedia article
//   - Path: An ordered chain of article titles from start to end
//   - Game: A persisted game session record
//   - UserStats: Per-player aggregate statistics
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (wiki, sixdegrees, database, server) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for API responses and
// database storage.
package model
