package collect

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightRenderer implements Renderer on a headless Chromium session.
// The browser session shares the pipeline's proxy setting so marketplace
// traffic exits the same way whether it comes from the scraping client or
// the browser.
type PlaywrightRenderer struct {
	mu          sync.Mutex
	proxyURL    string
	pw          *playwright.Playwright
	browser     playwright.Browser
	page        playwright.Page
	initialized bool
}

func NewPlaywrightRenderer(proxyURL string) *PlaywrightRenderer {
	return &PlaywrightRenderer{proxyURL: proxyURL}
}

func (r *PlaywrightRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if r.proxyURL != "" {
		opts.Proxy = &playwright.Proxy{Server: r.proxyURL}
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		pw.Stop()
		return fmt.Errorf("launch browser: %w", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("create page: %w", err)
	}

	r.pw = pw
	r.browser = browser
	r.page = page
	r.initialized = true
	return nil
}

func (r *PlaywrightRenderer) Load(ctx context.Context, url string) error {
	_, err := r.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(60000),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	return nil
}

func (r *PlaywrightRenderer) Dismiss(ctx context.Context, selectors []string) bool {
	for _, selector := range selectors {
		el := r.page.Locator(selector).First()
		if visible, _ := el.IsVisible(); visible {
			if err := el.Click(); err == nil {
				r.page.WaitForTimeout(500)
				return true
			}
		}
	}
	return false
}

func (r *PlaywrightRenderer) Scroll(ctx context.Context, fraction float64) error {
	script := fmt.Sprintf(`window.scrollBy(0, document.body.scrollHeight * %f)`, fraction)
	_, err := r.page.Evaluate(script)
	return err
}

func (r *PlaywrightRenderer) Click(ctx context.Context, selector string) bool {
	el := r.page.Locator(selector).First()
	if visible, _ := el.IsVisible(); !visible {
		return false
	}
	if err := el.Click(); err != nil {
		return false
	}
	r.page.WaitForTimeout(500)
	return true
}

func (r *PlaywrightRenderer) HTML(ctx context.Context) (string, error) {
	return r.page.Content()
}

func (r *PlaywrightRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.page != nil {
		r.page.Close()
		r.page = nil
	}
	if r.browser != nil {
		r.browser.Close()
		r.browser = nil
	}
	if r.pw != nil {
		r.pw.Stop()
		r.pw = nil
	}
	r.initialized = false
}
