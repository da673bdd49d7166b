package model

import (
	"net/url"
	"strings"
)

// WikipediaBaseURL is the canonical article URL prefix for the English
// Wikipedia. Canonical URLs returned to clients always use this host.
const WikipediaBaseURL = "https://en.wikipedia.org/wiki/"

// Page is a reference to a Wikipedia article.
// A Page is immutable once constructed; callers that need a variant
// (for example with resolved content) build a new value.
type Page struct {
	// PageID is Wikipedia's numeric page identifier.
	// Zero when the page has not been resolved through the query API
	// (the random-page endpoint returns titles only).
	PageID int `json:"pageid"`

	// Title is the canonical article title, with spaces (not underscores).
	Title string `json:"title"`

	// Extract is a short summary of the article. May be empty.
	Extract string `json:"extract"`

	// FullURL is the canonical article URL.
	FullURL string `json:"fullurl"`
}

// NewPage builds a Page for the given title with its canonical URL.
func NewPage(title string) Page {
	return Page{
		Title:   title,
		FullURL: PageURL(title),
	}
}

// PageURL returns the canonical article URL for a title.
func PageURL(title string) string {
	return WikipediaBaseURL + url.PathEscape(title)
}

// NormalizeTitle converts an article path segment to display form:
// underscores become spaces. Wikipedia treats the two interchangeably
// in URLs, but data-wiki-page attributes and API calls use spaces.
func NormalizeTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

// TitlesEqual reports whether two titles refer to the same article.
// Comparison is case-insensitive and underscore/space-insensitive,
// matching how the game decides that a navigation reached the target.
func TitlesEqual(a, b string) bool {
	return strings.EqualFold(NormalizeTitle(a), NormalizeTitle(b))
}

// Path is an ordered chain of article titles from start to end.
// A valid path has at least two entries and distinct endpoints.
type Path []string

// Degrees returns the number of link hops in the path (length - 1).
// An empty path has zero degrees.
func (p Path) Degrees() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Valid reports whether the path is structurally usable as a game:
// at least two hops and endpoints that are not the same article.
func (p Path) Valid() bool {
	if len(p) < 2 {
		return false
	}
	return !TitlesEqual(p[0], p[len(p)-1])
}

// Start returns the first title of the path, or "" for an empty path.
func (p Path) Start() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// End returns the last title of the path, or "" for an empty path.
func (p Path) End() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}
