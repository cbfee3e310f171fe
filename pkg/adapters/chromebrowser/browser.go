// Package chromebrowser provides a browser implementation using chromedp.
package chromebrowser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/eventshot/pkg/adapters/pagescript"
	"github.com/user/eventshot/pkg/ports"
)

// ErrChromeNotFound is returned by Launch when no Chrome executable is found.
var ErrChromeNotFound = errors.New("chrome not found: install Chrome/Chromium, set EVENTSHOT_CHROME_PATH or CHROME_PATH, or use --chrome-path")

// Browser implements ports.Browser using chromedp.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	// idle receives a value whenever the page reports a networkIdle lifecycle event.
	idle chan struct{}
}

// New creates a new Browser.
func New() *Browser {
	return &Browser{}
}

// Launch starts the browser with the given options.
func (b *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return ErrChromeNotFound
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(ctx, allocatorOptions(chromePath, opts)...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx)
	b.idle = make(chan struct{}, 1)

	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case b.idle <- struct{}{}:
			default:
			}
		}
	})

	// The first Run starts Chrome, so launch failures surface here.
	if err := chromedp.Run(b.ctx,
		page.Enable(),
		page.SetLifecycleEventsEnabled(true),
	); err != nil {
		b.Close()
		return fmt.Errorf("start chrome: %w", err)
	}

	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		if err := chromedp.Run(b.ctx,
			network.Enable(),
			network.SetExtraHTTPHeaders(headers),
		); err != nil {
			b.Close()
			return fmt.Errorf("set headers: %w", err)
		}
	}

	return nil
}

func allocatorOptions(chromePath string, opts ports.BrowserOptions) []chromedp.ExecAllocatorOption {
	o := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(chromePath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("no-zygote", true),
	}

	if opts.Headless {
		o = append(o, chromedp.Flag("headless", "new"))
	}
	if opts.Incognito {
		o = append(o, chromedp.Flag("incognito", true))
	}
	if opts.UserAgent != "" {
		o = append(o, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		o = append(o, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}
	if opts.IgnoreHTTPSErrors {
		o = append(o,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if opts.ProxyServer != "" {
		o = append(o, chromedp.ProxyServer(opts.ProxyServer))
	}
	return o
}

// SetViewport sets the viewport size at a device scale factor of 1.
func (b *Browser) SetViewport(width, height int) error {
	if err := chromedp.Run(b.ctx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
	); err != nil {
		return fmt.Errorf("set device metrics: %w", err)
	}
	return nil
}

// Navigate loads the specified URL.
func (b *Browser) Navigate(url string) error {
	// Forget idle signals from the previous document.
	select {
	case <-b.idle:
	default:
	}
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

// WaitForNetworkIdle waits for the networkIdle lifecycle event.
// Idle events from subframes also count; the capture stage's settle delay
// covers the main frame finishing shortly after.
func (b *Browser) WaitForNetworkIdle(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-b.idle:
		return nil
	case <-timer.C:
		return ports.ErrNetworkIdleTimeout
	case <-b.ctx.Done():
		return b.ctx.Err()
	}
}

// DismissCookieBanner clicks a consent button if one is visible.
func (b *Browser) DismissCookieBanner(selectors, labels []string) (bool, error) {
	script, err := pagescript.DismissCookieBanner(selectors, labels)
	if err != nil {
		return false, err
	}
	var raw string
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return false, fmt.Errorf("dismiss cookie banner: %w", err)
	}
	return pagescript.DecodeBool(raw)
}

// ScrollTo scrolls the window to the given document position.
func (b *Browser) ScrollTo(x, y int) error {
	var raw string
	return chromedp.Run(b.ctx, chromedp.Evaluate(pagescript.ScrollTo(x, y), &raw))
}

// ElementBoxes returns the document-space boxes of visible matching elements.
func (b *Browser) ElementBoxes(selector string) ([]ports.Box, error) {
	var raw string
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(pagescript.ElementBoxes(selector), &raw)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return pagescript.DecodeBoxes(raw)
}

// Screenshot captures the viewport or the full page as PNG.
func (b *Browser) Screenshot(fullPage bool) (*ports.Screenshot, error) {
	var buf []byte

	if fullPage {
		if err := chromedp.Run(b.ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
			return nil, fmt.Errorf("capture full page: %w", err)
		}
		return &ports.Screenshot{Data: buf}, nil
	}

	var raw string
	err := chromedp.Run(b.ctx,
		chromedp.Evaluate(pagescript.ScrollOffset, &raw),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("capture viewport: %w", err)
	}

	offset, err := pagescript.DecodeOffset(raw)
	if err != nil {
		return nil, err
	}
	return &ports.Screenshot{Data: buf, OffsetX: offset.X, OffsetY: offset.Y}, nil
}

// GetPageInfo retrieves information about the current page.
func (b *Browser) GetPageInfo() (*ports.PageInfo, error) {
	var raw string
	if err := chromedp.Run(b.ctx, chromedp.Evaluate(pagescript.PageInfo, &raw)); err != nil {
		return nil, fmt.Errorf("get page info: %w", err)
	}
	return pagescript.DecodePageInfo(raw)
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	if b.cancel != nil {
		b.cancel()
	}

	// Give Chrome a moment to shut down gracefully, then force kill
	time.Sleep(100 * time.Millisecond)

	if b.allocCancel != nil {
		b.allocCancel()
	}

	return nil
}

// Ensure Browser implements ports.Browser
var _ ports.Browser = (*Browser)(nil)
