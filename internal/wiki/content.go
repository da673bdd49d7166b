package wiki

import (
	"context"
	"fmt"
	"time"
)

// enhanceTimeout bounds the asynchronous image-upgrade stage. The stage
// is detached from the caller's context, so it needs its own deadline.
const enhanceTimeout = time.Minute

// PageContent returns the fully transformed HTML for an article:
// sanitized, image-enhanced, navbox-repaired, and wrapped in the
// delivery container. Results are cached; concurrent requests for the
// same title share a single upstream fetch.
//
// If the default parse fails, one retry is made against the simplified
// mobile rendering before the failure propagates.
func (c *Client) PageContent(ctx context.Context, title string) (string, error) {
	if cached, ok := c.cache.Get(title); ok {
		return cached, nil
	}

	content, err, _ := c.group.Do(c.cache.key(title), func() (any, error) {
		parse, err := c.fetchArticle(ctx, title)
		if err != nil {
			return "", err
		}

		sanitized, err := Sanitize(string(parse.Parse.Text))
		if err != nil {
			return "", fmt.Errorf("sanitize article %q: %w", title, err)
		}

		enhanced := c.EnhanceImages(ctx, sanitized.Content, parse.Parse.Images)
		enhanced = restoreNavboxes(enhanced, sanitized.Navboxes)
		enhanced = wrapContainer(enhanced)

		c.cache.Put(title, enhanced)
		return enhanced, nil
	})
	if err != nil {
		return "", err
	}
	return content.(string), nil
}

// PageContentProgressive returns sanitized article HTML immediately and
// upgrades image URLs in the background. When the upgrade completes, the
// cache entry is replaced and onEnhanced (if non-nil) is invoked with
// the upgraded content.
//
// The upgrade stage is detached from the caller's context: navigating
// away cancels interest in the initial content, but a finished upgrade
// is still worth caching for backtracking.
func (c *Client) PageContentProgressive(ctx context.Context, title string, onEnhanced func(string)) (string, error) {
	if cached, ok := c.cache.Get(title); ok {
		return cached, nil
	}

	parse, err := c.fetchArticle(ctx, title)
	if err != nil {
		return "", err
	}

	sanitized, err := Sanitize(string(parse.Parse.Text))
	if err != nil {
		return "", fmt.Errorf("sanitize article %q: %w", title, err)
	}

	initial := restoreNavboxes(sanitized.Content, sanitized.Navboxes)
	initial = wrapContainer(initial)
	c.cache.Put(title, initial)

	go func() {
		enhanceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enhanceTimeout)
		defer cancel()

		upgraded := c.EnhanceImages(enhanceCtx, initial, parse.Parse.Images)
		c.cache.Put(title, upgraded)
		if onEnhanced != nil {
			onEnhanced(upgraded)
		}
	}()

	return initial, nil
}

// fetchArticle parses an article, falling back once to the simplified
// mobile skin when the default rendering fails.
func (c *Client) fetchArticle(ctx context.Context, title string) (*parseResponse, error) {
	parse, err := c.fetchParse(ctx, title, "")
	if err == nil {
		return parse, nil
	}

	c.logger.Debug("default parse failed, retrying with mobile skin",
		"title", title,
		"error", err,
	)

	parse, ferr := c.fetchParse(ctx, title, skinMinerva)
	if ferr != nil {
		return nil, fmt.Errorf("fetch article %q: %w", title, ferr)
	}
	return parse, nil
}
