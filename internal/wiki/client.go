package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wikiracer/wikirace/internal/model"
)

// skinMinerva is the simplified mobile rendering mode. It is the
// fallback when the default parse of an article fails.
const skinMinerva = "minerva"

// Client talks to the Wikipedia action API.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeouts, User-Agent) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Client struct {
	// httpClient performs all upstream requests.
	httpClient *http.Client

	// apiBase is the action API endpoint, e.g. https://en.wikipedia.org/w/api.php.
	apiBase string

	// userAgent is sent with every request, per Wikimedia API etiquette.
	userAgent string

	// maxBodySize limits response bodies to prevent memory exhaustion.
	maxBodySize int64

	// cache holds sanitized article HTML keyed by normalized title.
	cache *ContentCache

	// group collapses concurrent fetches of the same title into one
	// upstream round trip.
	group singleflight.Group

	// logger receives debug/warn events. Never nil after NewClient.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithCache sets the content cache. Injecting the cache keeps tests
// isolated: each test can run against its own instance.
func WithCache(cache *ContentCache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Wikipedia API client for the given endpoint.
func NewClient(apiBase string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiBase:     apiBase,
		userAgent:   "WikiRace/1.0",
		maxBodySize: 8 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cache == nil {
		c.cache = NewContentCache(40)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Cache returns the client's content cache.
func (c *Client) Cache() *ContentCache {
	return c.cache
}

// apiError is the error envelope the action API returns in-band.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// parseText handles both response shapes the parse API produces:
// a plain string (formatversion=2) and the legacy {"*": "..."} wrapper.
type parseText string

// UnmarshalJSON accepts either encoding.
func (t *parseText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = parseText(s)
		return nil
	}
	var wrapped struct {
		Star string `json:"*"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*t = parseText(wrapped.Star)
	return nil
}

// parseResponse is the article parse payload: rendered HTML plus the
// list of image filenames embedded in the article.
type parseResponse struct {
	Parse struct {
		Title  string    `json:"title"`
		PageID int       `json:"pageid"`
		Text   parseText `json:"text"`
		Images []string  `json:"images"`
	} `json:"parse"`
	Error *apiError `json:"error"`
}

// randomResponse is the random-article payload.
type randomResponse struct {
	Query struct {
		Random []struct {
			ID    int    `json:"id"`
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

// imageInfoResponse is the batch imageinfo payload. Pages are keyed by
// page ID string (legacy format), matching the query the game issues.
type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			ImageInfo []struct {
				URL      string `json:"url"`
				ThumbURL string `json:"thumburl"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

// getJSON performs a GET against the action API and decodes the response.
func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia api request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia api status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, c.maxBodySize)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	return nil
}

// RandomPage fetches one random article title from the main namespace.
// Only the title is resolved; the page ID stays zero until the article
// is parsed, matching the cheap title-only supplier the pairing search
// wants.
func (c *Client) RandomPage(ctx context.Context) (model.Page, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"list":        {"random"},
		"rnnamespace": {"0"},
		"rnlimit":     {"1"},
		"origin":      {"*"},
	}

	var decoded randomResponse
	if err := c.getJSON(ctx, params, &decoded); err != nil {
		return model.Page{}, err
	}
	if decoded.Error != nil {
		return model.Page{}, fmt.Errorf("wikipedia api: %s", decoded.Error.Info)
	}
	if len(decoded.Query.Random) == 0 {
		return model.Page{}, fmt.Errorf("wikipedia api returned no random page")
	}

	return model.NewPage(decoded.Query.Random[0].Title), nil
}

// fetchParse parses an article into rendered HTML plus image filenames.
// An empty skin requests the default rendering.
func (c *Client) fetchParse(ctx context.Context, title, skin string) (*parseResponse, error) {
	params := url.Values{
		"action":             {"parse"},
		"format":             {"json"},
		"formatversion":      {"2"},
		"page":               {title},
		"prop":               {"text|images"},
		"disableeditsection": {"1"},
		"redirects":          {"true"},
		"origin":             {"*"},
	}
	if skin != "" {
		params.Set("useskin", skin)
	}

	var decoded parseResponse
	if err := c.getJSON(ctx, params, &decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("wikipedia parse %q: %s", title, decoded.Error.Info)
	}
	if decoded.Parse.Text == "" {
		return nil, fmt.Errorf("wikipedia parse %q: empty article text", title)
	}
	return &decoded, nil
}

// imageURLs resolves a batch of image filenames to their best available
// URL (800px thumbnail when one exists, original otherwise).
func (c *Client) imageURLs(ctx context.Context, filenames []string) (map[string]string, error) {
	params := url.Values{
		"action":     {"query"},
		"format":     {"json"},
		"titles":     {strings.Join(filenames, "|")},
		"prop":       {"imageinfo"},
		"iiprop":     {"url|size"},
		"iiurlwidth": {"800"},
		"origin":     {"*"},
	}

	var decoded imageInfoResponse
	if err := c.getJSON(ctx, params, &decoded); err != nil {
		return nil, err
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("wikipedia imageinfo: %s", decoded.Error.Info)
	}

	urls := make(map[string]string, len(decoded.Query.Pages))
	for _, page := range decoded.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]
		best := info.ThumbURL
		if best == "" {
			best = info.URL
		}
		if best != "" {
			urls[strings.TrimPrefix(page.Title, "File:")] = best
		}
	}
	return urls, nil
}
