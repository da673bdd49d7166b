package sixdegrees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wikiracer/wikirace/internal/model"
)

// PageSupplier produces one random page candidate.
type PageSupplier func(ctx context.Context) (model.Page, error)

// ContentFetcher resolves an article title to sanitized game HTML.
type ContentFetcher func(ctx context.Context, title string) (string, error)

// LinkChecker reports whether sanitized content carries a playable link
// to the given title. Injected so this package stays ignorant of the
// HTML format.
type LinkChecker func(content, title string) bool

// Options tune the pairing search. The zero value is not usable;
// construct through NewSelector, which applies defaults.
type Options struct {
	// MaxDegrees is the maximum accepted hop count.
	MaxDegrees int

	// EndAttemptsPerStart is how many end candidates are tried per
	// start page.
	EndAttemptsPerStart int

	// SafetyLimit bounds the outer loop over start pages.
	SafetyLimit int

	// ValidatePath enables hop-by-hop validation of candidate paths:
	// every hop's sanitized content must carry a playable link to the
	// next hop. Guarantees the player can actually walk the path, at
	// the cost of up to len(path)-2 extra article fetches.
	ValidatePath bool
}

// Result is a validated pairing ready to become a game.
type Result struct {
	// StartPage is the starting article.
	StartPage model.Page `json:"startPage"`

	// StartContent is the start article's sanitized HTML, prefetched
	// during the search.
	StartContent string `json:"startContent"`

	// EndPage is the target article with its canonical title and URL.
	EndPage model.Page `json:"endPage"`

	// Path is the solver's hop chain from start to end.
	Path model.Path `json:"path"`

	// Degrees is len(Path) - 1.
	Degrees int `json:"degrees"`
}

// Selector runs the pairing search.
type Selector struct {
	paths       *Client
	randomStart PageSupplier
	randomEnd   PageSupplier
	fetchContent ContentFetcher
	hasLink     LinkChecker
	opts        Options
	logger      *slog.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithOptions replaces the search tuning.
func WithOptions(opts Options) SelectorOption {
	return func(s *Selector) {
		if opts.MaxDegrees > 0 {
			s.opts.MaxDegrees = opts.MaxDegrees
		}
		if opts.EndAttemptsPerStart > 0 {
			s.opts.EndAttemptsPerStart = opts.EndAttemptsPerStart
		}
		if opts.SafetyLimit > 0 {
			s.opts.SafetyLimit = opts.SafetyLimit
		}
		s.opts.ValidatePath = opts.ValidatePath
	}
}

// WithLinkChecker sets the playable-link predicate used when path
// validation is enabled.
func WithLinkChecker(check LinkChecker) SelectorOption {
	return func(s *Selector) {
		s.hasLink = check
	}
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a Selector.
//
// randomStart and randomEnd are sampled independently; in production
// both are the Wikipedia random-page endpoint, in tests they are
// scripted suppliers.
func NewSelector(paths *Client, randomStart, randomEnd PageSupplier, fetchContent ContentFetcher, opts ...SelectorOption) *Selector {
	s := &Selector{
		paths:        paths,
		randomStart:  randomStart,
		randomEnd:    randomEnd,
		fetchContent: fetchContent,
		opts: Options{
			MaxDegrees:          10,
			EndAttemptsPerStart: 2,
			SafetyLimit:         10000,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// prefetch carries the result of a concurrent content fetch.
type prefetch struct {
	ch     chan prefetchResult
	cancel context.CancelFunc
}

type prefetchResult struct {
	content string
	err     error
}

// startPrefetch begins fetching the start page's content concurrently
// with the end-candidate search, so the two round trips overlap.
func (s *Selector) startPrefetch(ctx context.Context, title string) *prefetch {
	fetchCtx, cancel := context.WithCancel(ctx)
	p := &prefetch{ch: make(chan prefetchResult, 1), cancel: cancel}
	go func() {
		content, err := s.fetchContent(fetchCtx, title)
		p.ch <- prefetchResult{content: content, err: err}
	}()
	return p
}

// wait joins the prefetch.
func (p *prefetch) wait(ctx context.Context) (string, error) {
	select {
	case res := <-p.ch:
		return res.content, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Choose finds a start/end pairing connected within the degree cap and
// returns the concrete hop sequence.
//
// The outer loop samples start pages up to SafetyLimit times. For each
// start, up to EndAttemptsPerStart end candidates are tried; a 400 from
// the path service abandons the remaining attempts for that start, any
// other failure burns one attempt. On success the prefetched start
// content is joined and the assembled result returned. Exhausting the
// safety limit fails with ErrExhausted and no partial result.
func (s *Selector) Choose(ctx context.Context) (*Result, error) {
	for safety := 0; safety < s.opts.SafetyLimit; safety++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, err := s.randomStart(ctx)
		if err != nil {
			return nil, fmt.Errorf("sample start page: %w", err)
		}

		pf := s.startPrefetch(ctx, start.Title)
		result, err := s.tryEndCandidates(ctx, start, pf)
		if err != nil {
			pf.cancel()
			return nil, err
		}
		if result != nil {
			pf.cancel()
			return result, nil
		}
		// No end candidate worked for this start; drop the prefetch
		// and sample a fresh start page.
		pf.cancel()
	}

	return nil, ErrExhausted
}

// tryEndCandidates runs the inner retry loop for one start page.
// Returns (nil, nil) when the start page should be replaced.
func (s *Selector) tryEndCandidates(ctx context.Context, start model.Page, pf *prefetch) (*Result, error) {
	for attempt := 0; attempt < s.opts.EndAttemptsPerStart; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end, err := s.randomEnd(ctx)
		if err != nil {
			continue
		}
		if model.TitlesEqual(end.Title, start.Title) {
			continue
		}

		path, err := s.paths.FindPath(ctx, start.Title, end.Title)
		if errors.Is(err, ErrUnsolvablePair) {
			// Unsalvageable pairing: stop burning attempts on this
			// start page.
			s.logger.Debug("pairing rejected by path service",
				"start", start.Title,
				"end", end.Title,
			)
			return nil, nil
		}
		if err != nil {
			s.logger.Debug("path query failed",
				"start", start.Title,
				"end", end.Title,
				"error", err,
			)
			continue
		}

		degrees := path.Degrees()
		if degrees > s.opts.MaxDegrees {
			continue
		}

		if s.opts.ValidatePath {
			ok, err := s.validatePath(ctx, path)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		startContent, err := pf.wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("prefetch start content: %w", err)
		}

		endTitle := path.End()
		endPage := model.Page{
			PageID:  end.PageID,
			Title:   endTitle,
			Extract: end.Extract,
			FullURL: model.PageURL(endTitle),
		}

		s.logger.Debug("pairing accepted",
			"start", start.Title,
			"end", endTitle,
			"degrees", degrees,
		)

		return &Result{
			StartPage:    start,
			StartContent: startContent,
			EndPage:      endPage,
			Path:         path,
			Degrees:      degrees,
		}, nil
	}

	return nil, nil
}

// validatePath walks the path hop by hop and requires every hop's
// sanitized content to carry a playable link to the next hop. Context
// cancellation is fatal; a missing link just rejects the candidate.
func (s *Selector) validatePath(ctx context.Context, path model.Path) (bool, error) {
	if s.hasLink == nil {
		return true, nil
	}

	for i := 0; i < len(path)-1; i++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		content, err := s.fetchContent(ctx, path[i])
		if err != nil {
			s.logger.Debug("path validation fetch failed",
				"hop", path[i],
				"error", err,
			)
			return false, nil
		}
		if !s.hasLink(content, path[i+1]) {
			s.logger.Debug("path validation missing link",
				"hop", path[i],
				"next", path[i+1],
			)
			return false, nil
		}
	}
	return true, nil
}
