package collect

import "context"

// Renderer is the browser capability behind scroll-driven collectors: load a
// page, interact, and hand back the currently rendered HTML. Keeping the
// scroll policy on this side of the interface means the collection loop is
// testable without a real browser.
type Renderer interface {
	// Start brings up the browser session. A Start failure fails the whole
	// collection run.
	Start(ctx context.Context) error

	// Load navigates to the listing page and waits for initial content.
	Load(ctx context.Context, url string) error

	// Dismiss clicks the first visible element among the selectors, used for
	// cookie walls and promo overlays. Returns whether anything was clicked.
	Dismiss(ctx context.Context, selectors []string) bool

	// Scroll moves the viewport down by fraction of the page height
	// (1.0 = full height, 0.5 = half).
	Scroll(ctx context.Context, fraction float64) error

	// Click presses a single element if visible, used for "load more"
	// buttons. Returns whether it was clicked.
	Click(ctx context.Context, selector string) bool

	// HTML returns the current rendered DOM.
	HTML(ctx context.Context) (string, error)

	Close()
}
