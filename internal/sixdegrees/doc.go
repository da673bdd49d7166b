// Package sixdegrees finds playable start/end page pairings.
//
// The article graph is Wikipedia itself, effectively unbounded and not
// locally enumerable, so the search is generate-and-test: sample random
// pages, ask an external shortest-path oracle whether they connect
// within the degree cap, keep the first pair that does. The nested
// retry structure balances cost (every query is a network round trip)
// against the low probability that two random articles connect within a
// small degree bound.
//
// Every retry loop is bounded. A 400 from the oracle means the pairing
// is unsalvageable for the current start page and moves the search to a
// fresh start immediately; other failures burn one end-candidate
// attempt; exhausting the outer safety limit fails the whole search.
package sixdegrees
