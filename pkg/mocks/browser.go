// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/user/eventshot/pkg/ports"
)

// Browser is a mock implementation of ports.Browser.
// Every call is recorded in Calls in invocation order.
type Browser struct {
	LaunchFunc              func(ctx context.Context, opts ports.BrowserOptions) error
	SetViewportFunc         func(width, height int) error
	NavigateFunc            func(url string) error
	WaitForNetworkIdleFunc  func(timeout time.Duration) error
	DismissCookieBannerFunc func(selectors, labels []string) (bool, error)
	ScrollToFunc            func(x, y int) error
	ElementBoxesFunc        func(selector string) ([]ports.Box, error)
	ScreenshotFunc          func(fullPage bool) (*ports.Screenshot, error)
	GetPageInfoFunc         func() (*ports.PageInfo, error)
	CloseFunc               func() error

	mu    sync.Mutex
	calls []string
}

func (m *Browser) record(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls, e.g. "Navigate(https://example.com)".
func (m *Browser) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	m.record("Launch")
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, opts)
	}
	return nil
}

func (m *Browser) SetViewport(width, height int) error {
	m.record("SetViewport(%d,%d)", width, height)
	if m.SetViewportFunc != nil {
		return m.SetViewportFunc(width, height)
	}
	return nil
}

func (m *Browser) Navigate(url string) error {
	m.record("Navigate(%s)", url)
	if m.NavigateFunc != nil {
		return m.NavigateFunc(url)
	}
	return nil
}

func (m *Browser) WaitForNetworkIdle(timeout time.Duration) error {
	m.record("WaitForNetworkIdle(%s)", timeout)
	if m.WaitForNetworkIdleFunc != nil {
		return m.WaitForNetworkIdleFunc(timeout)
	}
	return nil
}

func (m *Browser) DismissCookieBanner(selectors, labels []string) (bool, error) {
	m.record("DismissCookieBanner")
	if m.DismissCookieBannerFunc != nil {
		return m.DismissCookieBannerFunc(selectors, labels)
	}
	return false, nil
}

func (m *Browser) ScrollTo(x, y int) error {
	m.record("ScrollTo(%d,%d)", x, y)
	if m.ScrollToFunc != nil {
		return m.ScrollToFunc(x, y)
	}
	return nil
}

func (m *Browser) ElementBoxes(selector string) ([]ports.Box, error) {
	m.record("ElementBoxes(%s)", selector)
	if m.ElementBoxesFunc != nil {
		return m.ElementBoxesFunc(selector)
	}
	return nil, nil
}

func (m *Browser) Screenshot(fullPage bool) (*ports.Screenshot, error) {
	m.record("Screenshot(%t)", fullPage)
	if m.ScreenshotFunc != nil {
		return m.ScreenshotFunc(fullPage)
	}
	return &ports.Screenshot{}, nil
}

func (m *Browser) GetPageInfo() (*ports.PageInfo, error) {
	m.record("GetPageInfo")
	if m.GetPageInfoFunc != nil {
		return m.GetPageInfoFunc()
	}
	return &ports.PageInfo{}, nil
}

func (m *Browser) Close() error {
	m.record("Close")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.Browser = (*Browser)(nil)
