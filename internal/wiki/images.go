package wiki

import (
	"context"
	"net/url"
	"regexp"
)

// imageBatchSize is the imageinfo API's practical per-request title cap.
const imageBatchSize = 20

// residualFileRe matches image sources still pointing at a /wiki/File:
// page after enhancement. Those get a generic file-path viewer URL.
var residualFileRe = regexp.MustCompile(`(?i)src="/wiki/File:([^"]+)"`)

// EnhanceImages rewrites image sources in sanitized content to their
// best available thumbnail or original URL, resolved in one batch
// request. Failures are non-fatal: the content renders either way, so
// errors are logged and the input returned with only the residual
// File: fallback applied.
func (c *Client) EnhanceImages(ctx context.Context, content string, imageNames []string) string {
	if len(imageNames) > 0 {
		batch := imageNames
		if len(batch) > imageBatchSize {
			batch = batch[:imageBatchSize]
		}

		urls, err := c.imageURLs(ctx, batch)
		if err != nil {
			c.logger.Warn("image enhancement failed", "error", err)
		} else {
			for name, best := range urls {
				content = substituteImage(content, name, best)
			}
		}
	}

	// Anything still pointing at a File: page falls back to the
	// Special:FilePath redirector, which serves the raw file.
	return residualFileRe.ReplaceAllStringFunc(content, func(match string) string {
		m := residualFileRe.FindStringSubmatch(match)
		if m == nil {
			return match
		}
		return `src="https://commons.wikimedia.org/wiki/Special:FilePath/` + url.PathEscape(m[1]) + `"`
	})
}

// substituteImage replaces every src occurrence referencing the named
// file with the resolved URL. Three patterns cover the forms the parse
// output uses: bare filename, File:-prefixed, and /wiki/File: paths.
func substituteImage(content, name, resolved string) string {
	esc := regexp.QuoteMeta(name)
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)src="[^"]*` + esc + `[^"]*"`),
		regexp.MustCompile(`(?i)src="[^"]*File:` + esc + `[^"]*"`),
		regexp.MustCompile(`(?i)src="/wiki/File:` + esc + `[^"]*"`),
	}
	replacement := `src="` + resolved + `"`
	for _, re := range patterns {
		content = re.ReplaceAllLiteralString(content, replacement)
	}
	return content
}
