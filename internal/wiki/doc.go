// Package wiki provides the Wikipedia side of the game: fetching
// articles through the public action API, transforming raw article
// markup into game-playable HTML, and caching the result.
//
// The sanitization pipeline is the core of this package. It runs a
// fixed sequence of passes over the parsed article tree; the order is
// load-bearing (link rewriting must not see hrefs inside notice boxes
// that an earlier pass removed). The output's only actionable links
// carry a data-wiki-page attribute, which is what the frontend's click
// handler reads to drive navigation.
//
// Content delivery is two-phase: the sanitized article is available
// immediately, and a best-effort image-URL upgrade lands asynchronously.
// Failures in the second phase never invalidate the first.
package wiki
