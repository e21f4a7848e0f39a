package collect

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"watchmarket/config"
	"watchmarket/models"
)

// scrollLoop drives one scroll-driven collection pass. All loop state
// (previous item count, stall counter, adaptive pause) lives here, so
// concurrent collectors cannot interfere with each other.
type scrollLoop struct {
	renderer  Renderer
	cfg       config.ScrollConfig
	pause     time.Duration
	stalls    int
	lastCount int
}

func newScrollLoop(renderer Renderer, cfg config.ScrollConfig) *scrollLoop {
	return &scrollLoop{
		renderer: renderer,
		cfg:      cfg,
		pause:    time.Duration(cfg.MinPauseMS) * time.Millisecond,
	}
}

// run scrolls until maxItems cards are rendered, the page stalls for
// StallLimit consecutive passes, or the attempt ceiling is hit. It always
// returns whatever has been parsed so far; a stalled page is a partial
// result, not an error.
//
// The pause between passes adapts: it doubles (capped at MaxPauseMS) while
// the page is not growing, to wait out slow lazy-loading, and snaps back to
// the minimum as soon as new cards appear. A fixed pause either wastes time
// on fast pages or misses content on slow ones.
func (l *scrollLoop) run(ctx context.Context, parse cardParser, maxItems int) ([]models.RawListing, int) {
	var items []models.RawListing
	var malformed int

	for attempt := 0; attempt < l.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return items, malformed
		}

		l.renderer.Dismiss(ctx, l.cfg.OverlaySelectors)
		if err := l.renderer.Scroll(ctx, 1.0); err != nil {
			log.Printf("scroll error on attempt %d: %v", attempt, err)
			return items, malformed
		}

		if !sleepCtx(ctx, l.pause) {
			return items, malformed
		}

		html, err := l.renderer.HTML(ctx)
		if err != nil {
			log.Printf("render read failed mid-run, keeping %d items: %v", len(items), err)
			return items, malformed
		}

		items, malformed = parse(html)
		if maxItems > 0 && len(items) >= maxItems {
			return items[:maxItems], malformed
		}

		if len(items) > l.lastCount {
			l.stalls = 0
			l.pause = time.Duration(l.cfg.MinPauseMS) * time.Millisecond
		} else {
			l.stalls++
			if l.stalls >= l.cfg.StallLimit {
				return items, malformed
			}
			// Recovery attempts before giving up: a "load more" click first,
			// then a partial-height scroll to retrigger lazy loaders.
			switch l.stalls {
			case 1:
				if l.cfg.LoadMoreSelector != "" {
					l.renderer.Click(ctx, l.cfg.LoadMoreSelector)
				}
			case 2:
				l.renderer.Scroll(ctx, 0.5)
			}
			l.pause *= 2
			if ceiling := time.Duration(l.cfg.MaxPauseMS) * time.Millisecond; l.pause > ceiling {
				l.pause = ceiling
			}
		}
		l.lastCount = len(items)
	}

	return items, malformed
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// ScrollCollector harvests one HTML-rendered marketplace by driving a
// Renderer through the scroll loop.
type ScrollCollector struct {
	cfg      *config.SourceConfig
	renderer Renderer
	parse    cardParser
	http     *http.Client
}

func NewScrollCollector(cfg *config.SourceConfig, renderer Renderer, parse cardParser, httpClient *http.Client) *ScrollCollector {
	return &ScrollCollector{cfg: cfg, renderer: renderer, parse: parse, http: httpClient}
}

func (c *ScrollCollector) ID() string {
	return c.cfg.ID
}

func (c *ScrollCollector) Collect(ctx context.Context, maxItems int) ([]models.RawListing, int, error) {
	if maxItems <= 0 || maxItems > c.cfg.MaxItems {
		maxItems = c.cfg.MaxItems
	}

	// Session establishment failures fail the whole run; anything after the
	// initial load degrades to a partial result inside the loop.
	if err := c.preflight(ctx); err != nil {
		return nil, 0, err
	}
	if err := c.renderer.Start(ctx); err != nil {
		return nil, 0, err
	}
	defer c.renderer.Close()

	if err := c.renderer.Load(ctx, c.cfg.URL); err != nil {
		return nil, 0, err
	}

	loop := newScrollLoop(c.renderer, c.cfg.Scroll)
	items, malformed := loop.run(ctx, c.parse, maxItems)
	if malformed > 0 {
		log.Printf("%s: skipped %d malformed cards", c.cfg.ID, malformed)
	}
	log.Printf("%s: collected %d listings", c.cfg.ID, len(items))
	return items, malformed, nil
}

// preflight checks the marketplace is reachable through the scraping client
// before paying for a browser session. Only transport failures abort; any
// HTTP status (bot walls included) still means the host is up and the
// browser gets its chance.
func (c *ScrollCollector) preflight(ctx context.Context) error {
	if c.http == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", c.cfg.ID, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		log.Printf("%s: preflight status %d, continuing with browser", c.cfg.ID, resp.StatusCode)
	}
	return nil
}
