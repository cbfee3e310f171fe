// Package pwbrowser provides a browser implementation using Playwright.
package pwbrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/user/eventshot/pkg/adapters/pagescript"
	"github.com/user/eventshot/pkg/ports"
)

// Browser implements ports.Browser on Playwright's Chromium.
type Browser struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// New creates a new Browser.
func New() *Browser {
	return &Browser{}
}

// Launch starts the Playwright driver and a Chromium instance.
// With AutoInstall set, the driver and Chromium are downloaded if missing.
func (b *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	if opts.AutoInstall {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	b.pw = pw

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ChromePath != "" {
		launch.ExecutablePath = playwright.String(opts.ChromePath)
	}
	if opts.ProxyServer != "" {
		launch.Proxy = &playwright.Proxy{Server: opts.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		b.Close()
		return fmt.Errorf("launch chromium: %w", err)
	}
	b.browser = browser

	width, height := opts.WindowWidth, opts.WindowHeight
	if width <= 0 || height <= 0 {
		width, height = 1400, 900
	}
	contextOpts := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: width, Height: height},
		IgnoreHttpsErrors: playwright.Bool(opts.IgnoreHTTPSErrors),
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if len(opts.Headers) > 0 {
		contextOpts.ExtraHttpHeaders = opts.Headers
	}

	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		b.Close()
		return fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		b.Close()
		return fmt.Errorf("new page: %w", err)
	}
	b.page = page

	// Playwright calls are not context-aware; tear down when ctx ends.
	go func() {
		<-ctx.Done()
		b.Close()
	}()

	return nil
}

// SetViewport sets the viewport size.
func (b *Browser) SetViewport(width, height int) error {
	return b.page.SetViewportSize(width, height)
}

// Navigate loads the specified URL and waits for the load event.
func (b *Browser) Navigate(url string) error {
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return err
}

// WaitForNetworkIdle waits until there are no network connections for 500ms.
func (b *Browser) WaitForNetworkIdle(timeout time.Duration) error {
	err := b.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return ports.ErrNetworkIdleTimeout
	}
	return err
}

func (b *Browser) evaluate(script string) (string, error) {
	v, err := b.page.Evaluate(script)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected script result %T", v)
	}
	return s, nil
}

// DismissCookieBanner clicks a consent button if one is visible.
func (b *Browser) DismissCookieBanner(selectors, labels []string) (bool, error) {
	script, err := pagescript.DismissCookieBanner(selectors, labels)
	if err != nil {
		return false, err
	}
	raw, err := b.evaluate(script)
	if err != nil {
		return false, fmt.Errorf("dismiss cookie banner: %w", err)
	}
	return pagescript.DecodeBool(raw)
}

// ScrollTo scrolls the window to the given document position.
func (b *Browser) ScrollTo(x, y int) error {
	_, err := b.evaluate(pagescript.ScrollTo(x, y))
	return err
}

// ElementBoxes returns the document-space boxes of visible matching elements.
func (b *Browser) ElementBoxes(selector string) ([]ports.Box, error) {
	raw, err := b.evaluate(pagescript.ElementBoxes(selector))
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return pagescript.DecodeBoxes(raw)
}

// Screenshot captures the viewport or the full page as PNG.
func (b *Browser) Screenshot(fullPage bool) (*ports.Screenshot, error) {
	shot := &ports.Screenshot{}
	if !fullPage {
		raw, err := b.evaluate(pagescript.ScrollOffset)
		if err != nil {
			return nil, fmt.Errorf("read scroll offset: %w", err)
		}
		offset, err := pagescript.DecodeOffset(raw)
		if err != nil {
			return nil, err
		}
		shot.OffsetX, shot.OffsetY = offset.X, offset.Y
	}

	data, err := b.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	shot.Data = data
	return shot, nil
}

// GetPageInfo retrieves information about the current page.
func (b *Browser) GetPageInfo() (*ports.PageInfo, error) {
	raw, err := b.evaluate(pagescript.PageInfo)
	if err != nil {
		return nil, fmt.Errorf("get page info: %w", err)
	}
	return pagescript.DecodePageInfo(raw)
}

// Close shuts down the browser and the Playwright driver. It is safe to call
// more than once.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		b.browser = nil
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
		b.pw = nil
	}
	return errors.Join(errs...)
}

// Ensure Browser implements ports.Browser
var _ ports.Browser = (*Browser)(nil)
