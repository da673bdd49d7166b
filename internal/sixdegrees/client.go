package sixdegrees

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wikiracer/wikirace/internal/model"
)

// Client queries the shortest-path service.
//
// The service is an opaque oracle: POST /paths with a source and target
// title, get back the connecting chains as arrays of internal node IDs
// plus an ID-to-page map to resolve them.
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// baseURL is the service root, without a trailing slash.
	baseURL string

	// userAgent is sent with every request.
	userAgent string
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

// NewClient creates a path-service client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		userAgent:  "WikiRace/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pathsRequest is the query body.
type pathsRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// pathsResponse is the service's answer: node IDs per path, and a map
// from node ID (as a string key) to page metadata.
type pathsResponse struct {
	Pages map[string]struct {
		Title string `json:"title"`
	} `json:"pages"`
	Paths [][]int `json:"paths"`
}

// FindPath asks the service for a chain connecting source to target and
// resolves the first returned path to article titles.
//
// Error contract, in order of specificity:
//   - ErrUnsolvablePair for HTTP 400 (give up on this start page)
//   - ErrNoPath when the response carries no resolvable path of length
//     at least two (try another end candidate)
//   - a transport/decode error for anything else (also retryable)
func (c *Client) FindPath(ctx context.Context, source, target string) (model.Path, error) {
	body, err := json.Marshal(pathsRequest{Source: source, Target: target})
	if err != nil {
		return nil, fmt.Errorf("encode paths request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/paths", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build paths request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paths request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrUnsolvablePair
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paths service status %d", resp.StatusCode)
	}

	var decoded pathsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode paths response: %w", err)
	}

	return resolveFirstPath(&decoded)
}

// resolveFirstPath maps the first path's node IDs to titles.
// Any unresolved ID invalidates the whole candidate path.
func resolveFirstPath(resp *pathsResponse) (model.Path, error) {
	if len(resp.Paths) == 0 {
		return nil, ErrNoPath
	}
	ids := resp.Paths[0]
	if len(ids) < 2 {
		return nil, ErrNoPath
	}

	titles := make(model.Path, 0, len(ids))
	for _, id := range ids {
		entry, ok := resp.Pages[strconv.Itoa(id)]
		if !ok || entry.Title == "" {
			return nil, ErrNoPath
		}
		titles = append(titles, entry.Title)
	}
	return titles, nil
}
