// Package eventshot provides a high-level API for capturing event listings.
package eventshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/user/eventshot/pkg/budget"
	"github.com/user/eventshot/pkg/orchestrator"
	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

// Preset names a set of defaults for a site.
type Preset string

const (
	PresetMetropol Preset = "metropol"
	PresetGeneric  Preset = "generic"
)

// Engine selects the browser automation backend.
type Engine string

const (
	EngineChromedp   Engine = "chromedp"
	EnginePlaywright Engine = "playwright"
)

// MinViewportWidth is the narrowest viewport Build allows.
const MinViewportWidth = 320

// MinViewportHeight is the shortest viewport Build allows.
const MinViewportHeight = 200

// MetropolURL is the event listing captured by the metropol preset.
const MetropolURL = "https://metropol.vartoslo.no/events"

// MetropolFallback is the fixed crop used when no card is found on the
// metropol listing.
var MetropolFallback = pipeline.Region{Left: 0, Top: 150, Right: 1400, Bottom: 750}

// DefaultCookieSelectors match the accept buttons of common consent managers.
var DefaultCookieSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#CybotCookiebotDialogBodyLevelButtonLevelOptinAllowAll",
	"button[data-testid='uc-accept-all-button']",
	".cky-btn-accept",
	".cmplz-accept",
}

// DefaultCookieLabels match accept buttons by their visible text.
var DefaultCookieLabels = []string{
	"Godta alle",
	"Godta",
	"Aksepter alle",
	"Aksepter",
	"Tillat alle",
	"Accept all",
	"Accept",
	"I agree",
	"OK",
}

// Config represents the configuration for one capture.
type Config struct {
	// Target
	URL        string
	OutputPath string

	// Browser
	Engine      Engine
	Headless    bool
	ChromePath  string
	AutoInstall bool // Download Playwright's Chromium if missing

	UserAgent         string
	Headers           map[string]string
	IgnoreHTTPSErrors bool
	ProxyServer       string

	// Capture
	ViewportWidth  int
	ViewportHeight int
	FullPage       bool
	IdleTimeout    time.Duration
	SettleDelay    time.Duration

	DismissCookies  bool
	CookieSelectors []string
	CookieLabels    []string

	ScrollSteps  int
	ScrollStepPx int
	ScrollDelay  time.Duration

	// Region
	CardSelector string
	MaxCards     int
	Padding      int
	FullWidth    bool
	Fallback     *pipeline.Region
	RequireCards bool

	// Compression
	MaxBytes       int
	InitialQuality int
	MinQuality     int
	MinScale       float64
	Step           float64
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with metropol preset defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: metropolDefaults(),
	}
}

// NewGenericConfigBuilder creates a new ConfigBuilder with generic preset
// defaults. The URL must be set.
func NewGenericConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: genericDefaults(),
	}
}

// NewPresetConfigBuilder creates a ConfigBuilder for a named preset.
func NewPresetConfigBuilder(name string) (*ConfigBuilder, error) {
	switch Preset(name) {
	case PresetMetropol, "":
		return NewConfigBuilder(), nil
	case PresetGeneric:
		return NewGenericConfigBuilder(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, Presets())
	}
}

// Presets lists the available preset names.
func Presets() []string {
	names := []string{string(PresetMetropol), string(PresetGeneric)}
	sort.Strings(names)
	return names
}

func baseDefaults() Config {
	capture := pipeline.DefaultCaptureInput()
	return Config{
		OutputPath: "events.jpg",

		Engine:   EngineChromedp,
		Headless: true,

		ViewportWidth:  capture.Viewport.Width,
		ViewportHeight: capture.Viewport.Height,
		IdleTimeout:    capture.IdleTimeout,
		SettleDelay:    capture.SettleDelay,

		DismissCookies:  true,
		CookieSelectors: DefaultCookieSelectors,
		CookieLabels:    DefaultCookieLabels,

		ScrollStepPx: capture.ScrollStepPx,
		ScrollDelay:  capture.ScrollDelay,

		MaxBytes:       budget.DefaultMaxBytes,
		InitialQuality: budget.DefaultInitialQuality,
		MinQuality:     budget.DefaultMinQuality,
		MinScale:       budget.DefaultMinScale,
		Step:           budget.DefaultStep,
	}
}

// metropolDefaults returns the metropol preset configuration.
func metropolDefaults() Config {
	cfg := baseDefaults()
	cfg.URL = MetropolURL
	cfg.ViewportWidth = 1400
	cfg.ViewportHeight = 900

	cfg.ScrollSteps = 2
	cfg.CardSelector = "article, .event-card, .event"
	cfg.MaxCards = 6
	cfg.Padding = 16
	cfg.FullWidth = true

	fallback := MetropolFallback
	cfg.Fallback = &fallback
	return cfg
}

// genericDefaults returns the generic preset configuration.
func genericDefaults() Config {
	cfg := baseDefaults()
	cfg.CardSelector = "article"
	cfg.Padding = 16
	return cfg
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.ViewportWidth < MinViewportWidth {
		cfg.ViewportWidth = MinViewportWidth
	}
	if cfg.ViewportHeight < MinViewportHeight {
		cfg.ViewportHeight = MinViewportHeight
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = pipeline.DefaultCaptureInput().IdleTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.ScrollSteps < 0 {
		cfg.ScrollSteps = 0
	}
	if cfg.ScrollDelay < 0 {
		cfg.ScrollDelay = 0
	}
	if cfg.MaxCards < 0 {
		cfg.MaxCards = 0
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	if cfg.Fallback != nil && cfg.Fallback.Empty() {
		cfg.Fallback = nil
	}

	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = budget.DefaultMaxBytes
	}
	cfg.InitialQuality = clamp(cfg.InitialQuality, 1, 100)
	cfg.MinQuality = clamp(cfg.MinQuality, 1, cfg.InitialQuality)
	if cfg.MinScale <= 0 || cfg.MinScale > 1 {
		cfg.MinScale = budget.DefaultMinScale
	}
	if cfg.Step <= 0 || cfg.Step >= 1 {
		cfg.Step = budget.DefaultStep
	}

	if cfg.Engine == "" {
		cfg.Engine = EngineChromedp
	}

	return cfg
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// WithURL sets the page to capture.
func (b *ConfigBuilder) WithURL(url string) *ConfigBuilder {
	b.config.URL = url
	return b
}

// WithOutputPath sets the JPEG output path.
func (b *ConfigBuilder) WithOutputPath(path string) *ConfigBuilder {
	b.config.OutputPath = path
	return b
}

// WithEngine sets the browser engine.
func (b *ConfigBuilder) WithEngine(engine Engine) *ConfigBuilder {
	b.config.Engine = engine
	return b
}

// WithHeadless toggles headless mode.
func (b *ConfigBuilder) WithHeadless(headless bool) *ConfigBuilder {
	b.config.Headless = headless
	return b
}

// WithChromePath sets an explicit browser executable.
func (b *ConfigBuilder) WithChromePath(path string) *ConfigBuilder {
	b.config.ChromePath = path
	return b
}

// WithAutoInstall lets the playwright engine download Chromium.
func (b *ConfigBuilder) WithAutoInstall(auto bool) *ConfigBuilder {
	b.config.AutoInstall = auto
	return b
}

// WithUserAgent overrides the browser user agent.
func (b *ConfigBuilder) WithUserAgent(ua string) *ConfigBuilder {
	b.config.UserAgent = ua
	return b
}

// WithHeaders sets extra HTTP request headers.
func (b *ConfigBuilder) WithHeaders(headers map[string]string) *ConfigBuilder {
	b.config.Headers = headers
	return b
}

// WithIgnoreHTTPSErrors enables ignoring HTTPS certificate errors.
func (b *ConfigBuilder) WithIgnoreHTTPSErrors(ignore bool) *ConfigBuilder {
	b.config.IgnoreHTTPSErrors = ignore
	return b
}

// WithProxyServer sets the HTTP proxy server.
func (b *ConfigBuilder) WithProxyServer(proxy string) *ConfigBuilder {
	b.config.ProxyServer = proxy
	return b
}

// WithViewport sets the browser viewport size.
// Values below MinViewportWidth x MinViewportHeight are raised.
func (b *ConfigBuilder) WithViewport(width, height int) *ConfigBuilder {
	b.config.ViewportWidth = width
	b.config.ViewportHeight = height
	return b
}

// WithFullPage captures the whole document instead of the viewport.
func (b *ConfigBuilder) WithFullPage(full bool) *ConfigBuilder {
	b.config.FullPage = full
	return b
}

// WithIdleTimeout bounds the wait for network idle.
func (b *ConfigBuilder) WithIdleTimeout(d time.Duration) *ConfigBuilder {
	b.config.IdleTimeout = d
	return b
}

// WithSettleDelay sets the extra wait after network idle.
func (b *ConfigBuilder) WithSettleDelay(d time.Duration) *ConfigBuilder {
	b.config.SettleDelay = d
	return b
}

// WithCookieDismissal toggles clicking the cookie consent button.
func (b *ConfigBuilder) WithCookieDismissal(dismiss bool) *ConfigBuilder {
	b.config.DismissCookies = dismiss
	return b
}

// WithCookieSelectors replaces the consent button selectors.
func (b *ConfigBuilder) WithCookieSelectors(selectors []string) *ConfigBuilder {
	b.config.CookieSelectors = selectors
	return b
}

// WithCookieLabels replaces the consent button labels.
func (b *ConfigBuilder) WithCookieLabels(labels []string) *ConfigBuilder {
	b.config.CookieLabels = labels
	return b
}

// WithScroll sets the lazy-load scroll steps. Zero steps disables scrolling.
func (b *ConfigBuilder) WithScroll(steps, stepPx int) *ConfigBuilder {
	b.config.ScrollSteps = steps
	if stepPx > 0 {
		b.config.ScrollStepPx = stepPx
	}
	return b
}

// WithScrollDelay sets the pause after each scroll step.
func (b *ConfigBuilder) WithScrollDelay(d time.Duration) *ConfigBuilder {
	b.config.ScrollDelay = d
	return b
}

// WithCardSelector sets the CSS selector of the event cards.
func (b *ConfigBuilder) WithCardSelector(selector string) *ConfigBuilder {
	b.config.CardSelector = selector
	return b
}

// WithMaxCards limits the crop to the first n cards in reading order.
// Zero uses all cards.
func (b *ConfigBuilder) WithMaxCards(n int) *ConfigBuilder {
	b.config.MaxCards = n
	return b
}

// WithPadding sets the margin added around the cards.
func (b *ConfigBuilder) WithPadding(px int) *ConfigBuilder {
	b.config.Padding = px
	return b
}

// WithFullWidth makes the crop span the whole screenshot width.
func (b *ConfigBuilder) WithFullWidth(full bool) *ConfigBuilder {
	b.config.FullWidth = full
	return b
}

// WithFallback sets the region used when no card is found. Nil falls back
// to the whole screenshot.
func (b *ConfigBuilder) WithFallback(region *pipeline.Region) *ConfigBuilder {
	b.config.Fallback = region
	return b
}

// WithRequireCards makes a capture without cards fail.
func (b *ConfigBuilder) WithRequireCards(require bool) *ConfigBuilder {
	b.config.RequireCards = require
	return b
}

// WithMaxBytes sets the output size budget.
func (b *ConfigBuilder) WithMaxBytes(n int) *ConfigBuilder {
	b.config.MaxBytes = n
	return b
}

// WithQuality sets the starting and lowest JPEG quality.
func (b *ConfigBuilder) WithQuality(initial, minimum int) *ConfigBuilder {
	b.config.InitialQuality = initial
	b.config.MinQuality = minimum
	return b
}

// WithMinScale sets the smallest scale factor tried.
func (b *ConfigBuilder) WithMinScale(scale float64) *ConfigBuilder {
	b.config.MinScale = scale
	return b
}

// WithStep sets the multiplicative step for quality and scale.
func (b *ConfigBuilder) WithStep(step float64) *ConfigBuilder {
	b.config.Step = step
	return b
}

// BudgetOptions returns the search parameters of the compression.
func (c Config) BudgetOptions() budget.Options {
	return budget.Options{
		InitialQuality: c.InitialQuality,
		MinQuality:     c.MinQuality,
		MinScale:       c.MinScale,
		Step:           c.Step,
	}
}

// BrowserOptions returns the options passed to Browser.Launch.
func (c Config) BrowserOptions() ports.BrowserOptions {
	return ports.BrowserOptions{
		Headless:          c.Headless,
		ChromePath:        c.ChromePath,
		UserAgent:         c.UserAgent,
		Headers:           c.Headers,
		WindowWidth:       c.ViewportWidth,
		WindowHeight:      c.ViewportHeight,
		IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
		ProxyServer:       c.ProxyServer,
		AutoInstall:       c.AutoInstall,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		URL:        c.URL,
		OutputPath: c.OutputPath,

		Viewport:        pipeline.Dimension{Width: c.ViewportWidth, Height: c.ViewportHeight},
		FullPage:        c.FullPage,
		IdleTimeout:     c.IdleTimeout,
		SettleDelay:     c.SettleDelay,
		DismissCookies:  c.DismissCookies,
		CookieSelectors: c.CookieSelectors,
		CookieLabels:    c.CookieLabels,
		ScrollSteps:     c.ScrollSteps,
		ScrollStepPx:    c.ScrollStepPx,
		ScrollDelay:     c.ScrollDelay,
		CardSelector:    c.CardSelector,
		Headers:         c.Headers,

		UserAgent:         c.UserAgent,
		IgnoreHTTPSErrors: c.IgnoreHTTPSErrors,
		ProxyServer:       c.ProxyServer,

		MaxCards:     c.MaxCards,
		Padding:      c.Padding,
		FullWidth:    c.FullWidth,
		Fallback:     c.Fallback,
		RequireCards: c.RequireCards,

		MaxBytes: c.MaxBytes,
		Budget:   c.BudgetOptions(),
	}
}
