// Package main provides the entry point for the Wiki Race CLI.
//
// Wiki Race is a navigation game backend built on Wikipedia. It pairs
// random start and end articles connected by a verifiable link path,
// serves sanitized article content, and tracks per-player statistics.
//
// Usage:
//
//	wikirace serve
//	wikirace race
//	wikirace stats <player-id>
//
// See --help for all available options.
package main

// main is the entry point for Wiki Race.
func main() {
	Execute()
}
