// Package capture implements the page capture stage.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

// minWindowWidth is the minimum window width for Chrome headless mode.
const minWindowWidth = 500

// Stage loads a page in a browser and captures a screenshot with the
// geometry of the event cards.
type Stage struct {
	browser     ports.Browser
	sink        ports.DebugSink
	logger      ports.Logger
	browserOpts ports.BrowserOptions
}

// New creates a new capture stage.
func New(browser ports.Browser, sink ports.DebugSink, logger ports.Logger, opts ports.BrowserOptions) *Stage {
	return &Stage{
		browser:     browser,
		sink:        sink,
		logger:      logger.WithComponent("browser"),
		browserOpts: opts,
	}
}

// Execute captures the page described by input. The browser is always closed
// before returning.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	var result pipeline.CaptureResult

	opts := s.browserOpts
	if len(input.Headers) > 0 {
		opts.Headers = input.Headers
	}
	if input.UserAgent != "" {
		opts.UserAgent = input.UserAgent
	}
	opts.IgnoreHTTPSErrors = input.IgnoreHTTPSErrors
	opts.ProxyServer = input.ProxyServer
	opts.WindowWidth = max(input.Viewport.Width, minWindowWidth)
	opts.WindowHeight = input.Viewport.Height

	if opts.Headless {
		s.logger.Debug("Launching browser in headless mode")
	} else {
		s.logger.Debug("Launching browser in visible mode")
	}
	if err := s.browser.Launch(ctx, opts); err != nil {
		return result, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		s.browser.Close()
		s.logger.Debug("Browser closed")
	}()

	if err := s.browser.SetViewport(input.Viewport.Width, input.Viewport.Height); err != nil {
		return result, fmt.Errorf("set viewport: %w", err)
	}

	s.logger.Debug("Navigating to %s", input.URL)
	if err := s.browser.Navigate(input.URL); err != nil {
		return result, fmt.Errorf("navigate: %w", err)
	}

	if err := s.browser.WaitForNetworkIdle(input.IdleTimeout); err != nil {
		if !errors.Is(err, ports.ErrNetworkIdleTimeout) {
			return result, fmt.Errorf("wait for network idle: %w", err)
		}
		s.logger.Warn("Network did not go idle within %s, continuing", input.IdleTimeout)
		result.IdleTimedOut = true
	}

	if input.SettleDelay > 0 {
		s.logger.Debug("Waiting %s for the page to settle", input.SettleDelay)
		if err := sleep(ctx, input.SettleDelay); err != nil {
			return result, err
		}
	}

	if input.DismissCookies {
		dismissed, err := s.browser.DismissCookieBanner(input.CookieSelectors, input.CookieLabels)
		if err != nil {
			return result, fmt.Errorf("dismiss cookie banner: %w", err)
		}
		result.CookieDismissed = dismissed
		if dismissed {
			s.logger.Debug("Dismissed cookie banner")
			if err := sleep(ctx, input.ScrollDelay); err != nil {
				return result, err
			}
		} else {
			s.logger.Debug("No cookie banner found")
		}
	}

	if input.ScrollSteps > 0 && input.ScrollStepPx > 0 {
		if err := s.scroll(ctx, input); err != nil {
			return result, err
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if input.CardSelector != "" {
		boxes, err := s.browser.ElementBoxes(input.CardSelector)
		if err != nil {
			return result, fmt.Errorf("locate cards: %w", err)
		}
		result.Boxes = boxes
		s.logger.Debug("Found %d elements matching %s", len(boxes), input.CardSelector)
	}

	shot, err := s.browser.Screenshot(input.FullPage)
	if err != nil {
		return result, fmt.Errorf("screenshot: %w", err)
	}
	result.Screenshot = *shot
	if s.sink.Enabled() {
		s.sink.SaveScreenshot(shot.Data)
	}

	pageInfo, err := s.browser.GetPageInfo()
	if err != nil {
		return result, fmt.Errorf("get page info: %w", err)
	}
	result.PageInfo = *pageInfo

	return result, nil
}

// scroll steps down the page to trigger lazy loading, then returns to the top.
func (s *Stage) scroll(ctx context.Context, input pipeline.CaptureInput) error {
	s.logger.Debug("Scrolling %d steps of %d px", input.ScrollSteps, input.ScrollStepPx)
	for i := 1; i <= input.ScrollSteps; i++ {
		if err := s.browser.ScrollTo(0, i*input.ScrollStepPx); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if err := sleep(ctx, input.ScrollDelay); err != nil {
			return err
		}
	}
	if err := s.browser.ScrollTo(0, 0); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return sleep(ctx, input.ScrollDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
