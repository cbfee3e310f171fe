// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNetworkIdleTimeout is returned by WaitForNetworkIdle when the page keeps
// loading past the timeout. Callers usually continue with what has rendered.
var ErrNetworkIdleTimeout = errors.New("network idle timeout")

// Browser abstracts the browser automation needed to capture a page.
type Browser interface {
	// Launch starts the browser with the given options.
	Launch(ctx context.Context, opts BrowserOptions) error

	// SetViewport sets the viewport size in CSS pixels at a device scale factor of 1,
	// so screenshot pixels and element boxes share one coordinate space.
	SetViewport(width, height int) error

	// Navigate loads the specified URL and waits for the load event.
	Navigate(url string) error

	// WaitForNetworkIdle blocks until the page has had no network activity
	// for a short period, or returns ErrNetworkIdleTimeout.
	WaitForNetworkIdle(timeout time.Duration) error

	// DismissCookieBanner clicks the first visible element matching one of the
	// selectors, or failing that the first visible button whose text equals one
	// of the labels (case-insensitive). Reports whether anything was clicked.
	DismissCookieBanner(selectors, labels []string) (bool, error)

	// ScrollTo scrolls the window to the given document position.
	ScrollTo(x, y int) error

	// ElementBoxes returns the bounding boxes of visible elements matching the
	// CSS selector, in document coordinates and document order.
	ElementBoxes(selector string) ([]Box, error)

	// Screenshot captures the viewport, or the whole page when fullPage is true.
	Screenshot(fullPage bool) (*Screenshot, error)

	// GetPageInfo retrieves information about the current page.
	GetPageInfo() (*PageInfo, error)

	// Close shuts down the browser.
	Close() error
}

// BrowserOptions configures browser launch settings.
type BrowserOptions struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	Headers           map[string]string
	WindowWidth       int
	WindowHeight      int
	IgnoreHTTPSErrors bool
	ProxyServer       string // e.g. "http://proxy:8080"
	Incognito         bool
	AutoInstall       bool // Download a browser when none is available (playwright engine)
}

// Box is an element's bounding rectangle in CSS pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Screenshot is a PNG capture of the page.
type Screenshot struct {
	Data []byte // PNG image data

	// OffsetX/OffsetY give the document position of the image's top-left
	// pixel: the scroll position for viewport captures, zero for full page.
	OffsetX int
	OffsetY int
}

// PageInfo contains information about the current page.
type PageInfo struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	ScrollHeight int    `json:"scrollHeight"`
	ScrollWidth  int    `json:"scrollWidth"`
}
