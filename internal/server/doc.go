// Package server exposes the game over HTTP.
//
// The API is JSON throughout: game lifecycle routes (start, update,
// finish, abandon), per-user stats, pairing selection, sanitized page
// content for navigation moves, and a websocket feed of game-progress
// events for spectators.
//
// Authentication happens at the boundary through a UserResolver. The
// server never sees credentials beyond the resolver; handlers receive
// an already-resolved player ID. Requests the resolver rejects get a
// 401 before any handler runs.
package server
