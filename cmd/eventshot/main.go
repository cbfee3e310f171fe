// Package main provides the CLI entry point for eventshot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/eventshot/pkg/adapters/chromebrowser"
	"github.com/user/eventshot/pkg/adapters/filesink"
	"github.com/user/eventshot/pkg/adapters/imagekit"
	"github.com/user/eventshot/pkg/adapters/logger"
	"github.com/user/eventshot/pkg/adapters/nullsink"
	"github.com/user/eventshot/pkg/adapters/osfilesystem"
	"github.com/user/eventshot/pkg/adapters/pwbrowser"
	"github.com/user/eventshot/pkg/config"
	"github.com/user/eventshot/pkg/eventshot"
	"github.com/user/eventshot/pkg/orchestrator"
	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
	"github.com/user/eventshot/pkg/stages/capture"
	"github.com/user/eventshot/pkg/stages/compress"
	"github.com/user/eventshot/pkg/stages/crop"
	"github.com/user/eventshot/pkg/stages/region"
	"github.com/user/eventshot/pkg/summarizer"
)

var version = "dev"

// Flag categories
const (
	catOutput      = "Output"
	catBrowser     = "Browser"
	catCapture     = "Capture"
	catRegion      = "Region"
	catCompression = "Compression"
	catDebug       = "Debug"
	catLogging     = "Logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "eventshot",
		Usage:       l10n.T("Capture an event listing as a size-bounded JPEG"),
		Description: l10n.T("eventshot screenshots a web page, crops it to the event cards and compresses the result to fit a byte budget."),
		Version:     version,
		Flags:       captureFlags(),
		Action:      runCapture,
		Commands: []*cli.Command{
			{
				Name:   "capture",
				Usage:  l10n.T("Capture a page and write a JPEG within the byte budget"),
				Flags:  captureFlags(),
				Action: runCapture,
			},
			{
				Name:      "compress",
				Usage:     l10n.T("Compress an existing image to fit the byte budget"),
				ArgsUsage: "<image>",
				Flags:     compressFlags(),
				Action:    runCompress,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("eventshot version %s", version))
					return nil
				},
			},
		},
	}
}

func captureFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Category: catOutput, EnvVars: []string{"EVENTSHOT_URL"},
			Usage: l10n.T("URL of the event listing (default from preset)")},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Category: catOutput, EnvVars: []string{"EVENTSHOT_PRESET"},
			Usage: l10n.F("Preset configuration (%s)", strings.Join(eventshot.Presets(), ", "))},

		&cli.StringFlag{Name: "engine", Category: catBrowser, EnvVars: []string{"EVENTSHOT_ENGINE"},
			Usage: l10n.T("Browser engine (chromedp, playwright)")},
		&cli.BoolFlag{Name: "no-headless", Category: catBrowser, EnvVars: []string{"EVENTSHOT_NO_HEADLESS"},
			Usage: l10n.T("Run browser in non-headless mode")},
		&cli.StringFlag{Name: "chrome-path", Category: catBrowser, EnvVars: []string{"EVENTSHOT_CHROME_PATH"},
			Usage: l10n.T("Path to Chrome executable")},
		&cli.BoolFlag{Name: "install-browser", Category: catBrowser, EnvVars: []string{"EVENTSHOT_INSTALL_BROWSER"},
			Usage: l10n.T("Download the Playwright browser if missing")},
		&cli.StringFlag{Name: "user-agent", Category: catBrowser, EnvVars: []string{"EVENTSHOT_USER_AGENT"},
			Usage: l10n.T("User agent override")},
		&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Category: catBrowser, EnvVars: []string{"EVENTSHOT_HEADERS"},
			Usage: l10n.T("Extra request header (Name: value), repeatable")},
		&cli.BoolFlag{Name: "ignore-https-errors", Category: catBrowser, EnvVars: []string{"EVENTSHOT_IGNORE_HTTPS_ERRORS"},
			Usage: l10n.T("Ignore HTTPS certificate errors")},
		&cli.StringFlag{Name: "proxy-server", Category: catBrowser, EnvVars: []string{"EVENTSHOT_PROXY_SERVER"},
			Usage: l10n.T("HTTP proxy server (e.g., http://proxy:8080)")},

		&cli.IntFlag{Name: "viewport-width", Category: catCapture, EnvVars: []string{"EVENTSHOT_VIEWPORT_WIDTH"},
			Usage: l10n.F("Browser viewport width (min: %d)", eventshot.MinViewportWidth)},
		&cli.IntFlag{Name: "viewport-height", Category: catCapture, EnvVars: []string{"EVENTSHOT_VIEWPORT_HEIGHT"},
			Usage: l10n.F("Browser viewport height (min: %d)", eventshot.MinViewportHeight)},
		&cli.BoolFlag{Name: "full-page", Category: catCapture, EnvVars: []string{"EVENTSHOT_FULL_PAGE"},
			Usage: l10n.T("Capture the whole page instead of the viewport")},
		&cli.DurationFlag{Name: "idle-timeout", Category: catCapture, EnvVars: []string{"EVENTSHOT_IDLE_TIMEOUT"},
			Usage: l10n.T("Maximum wait for network idle")},
		&cli.DurationFlag{Name: "settle-delay", Category: catCapture, EnvVars: []string{"EVENTSHOT_SETTLE_DELAY"},
			Usage: l10n.T("Extra wait after network idle")},
		&cli.BoolFlag{Name: "no-cookie-dismiss", Category: catCapture, EnvVars: []string{"EVENTSHOT_NO_COOKIE_DISMISS"},
			Usage: l10n.T("Leave cookie banners alone")},
		&cli.IntFlag{Name: "scroll-steps", Category: catCapture, EnvVars: []string{"EVENTSHOT_SCROLL_STEPS"},
			Usage: l10n.T("Scroll steps to trigger lazy loading (0 = none)")},
		&cli.IntFlag{Name: "scroll-step-px", Category: catCapture, EnvVars: []string{"EVENTSHOT_SCROLL_STEP_PX"},
			Usage: l10n.T("Pixels per scroll step")},
		&cli.DurationFlag{Name: "scroll-delay", Category: catCapture, EnvVars: []string{"EVENTSHOT_SCROLL_DELAY"},
			Usage: l10n.T("Pause after each scroll step")},

		&cli.StringFlag{Name: "card-selector", Category: catRegion, EnvVars: []string{"EVENTSHOT_CARD_SELECTOR"},
			Usage: l10n.T("CSS selector of event cards")},
		&cli.IntFlag{Name: "max-cards", Category: catRegion, EnvVars: []string{"EVENTSHOT_MAX_CARDS"},
			Usage: l10n.T("Maximum number of cards in the crop (0 = all)")},
		&cli.IntFlag{Name: "padding", Category: catRegion, EnvVars: []string{"EVENTSHOT_PADDING"},
			Usage: l10n.T("Padding around the cards in pixels")},
		&cli.BoolFlag{Name: "full-width", Category: catRegion, EnvVars: []string{"EVENTSHOT_FULL_WIDTH"},
			Usage: l10n.T("Keep the full screenshot width")},
		&cli.StringFlag{Name: "fallback", Category: catRegion, EnvVars: []string{"EVENTSHOT_FALLBACK"},
			Usage: l10n.T("Crop used when no card is found (left,top,right,bottom or none)")},
		&cli.BoolFlag{Name: "require-cards", Category: catRegion, EnvVars: []string{"EVENTSHOT_REQUIRE_CARDS"},
			Usage: l10n.T("Fail when no card is found")},
	}
	return append(flags, commonFlags()...)
}

func compressFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Category: catRegion, EnvVars: []string{"EVENTSHOT_REGION"},
			Usage: l10n.T("Crop region (left,top,right,bottom)")},
	}
	return append(flags, commonFlags()...)
}

// commonFlags are shared by capture and compress.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Category: catOutput, EnvVars: []string{"EVENTSHOT_OUTPUT"},
			Usage: l10n.T("Output JPEG file path")},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Category: catOutput, EnvVars: []string{"EVENTSHOT_CONFIG"},
			Usage: l10n.T("YAML configuration file")},

		&cli.IntFlag{Name: "max-bytes", Aliases: []string{"b"}, Category: catCompression, EnvVars: []string{"EVENTSHOT_MAX_BYTES"},
			Value: eventshot.NewConfigBuilder().Build().MaxBytes,
			Usage: l10n.T("Maximum JPEG size in bytes")},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Category: catCompression, EnvVars: []string{"EVENTSHOT_QUALITY"},
			Usage: l10n.T("Starting JPEG quality (1-100)")},
		&cli.IntFlag{Name: "min-quality", Category: catCompression, EnvVars: []string{"EVENTSHOT_MIN_QUALITY"},
			Usage: l10n.T("Lowest JPEG quality before downscaling")},
		&cli.Float64Flag{Name: "min-scale", Category: catCompression, EnvVars: []string{"EVENTSHOT_MIN_SCALE"},
			Usage: l10n.T("Smallest scale factor tried")},
		&cli.Float64Flag{Name: "step", Category: catCompression, EnvVars: []string{"EVENTSHOT_STEP"},
			Usage: l10n.T("Multiplicative step for quality and scale")},

		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Category: catDebug, EnvVars: []string{"EVENTSHOT_DEBUG"},
			Usage: l10n.T("Enable debug output")},
		&cli.StringFlag{Name: "debug-dir", Category: catDebug, EnvVars: []string{"EVENTSHOT_DEBUG_DIR"},
			Usage: l10n.T("Directory for debug output")},
		&cli.StringFlag{Name: "summary", Category: catDebug, EnvVars: []string{"EVENTSHOT_SUMMARY"},
			Usage: l10n.T("Output execution summary to file (Markdown format)")},

		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Category: catLogging, EnvVars: []string{"EVENTSHOT_LOG_LEVEL"},
			Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Category: catLogging, EnvVars: []string{"EVENTSHOT_QUIET"},
			Usage: l10n.T("Suppress all log output")},
	}
}

// runOptions holds settings that live outside eventshot.Config.
type runOptions struct {
	debug    bool
	debugDir string
	summary  string
	logLevel string
	quiet    bool
}

func runCapture(c *cli.Context) error {
	cfg, opts, err := buildConfig(c)
	if err != nil {
		return err
	}

	log, err := newLogger(opts)
	if err != nil {
		return err
	}

	ctx, cancel := withSignals(c.Context, log)
	defer cancel()

	fs := osfilesystem.New()
	processor := imagekit.New()
	sink, err := newSink(opts, fs, processor)
	if err != nil {
		return err
	}

	browser, err := newBrowser(cfg.Engine)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		capture.New(browser, sink, log, cfg.BrowserOptions()),
		region.NewStage(),
		crop.New(processor, sink, log),
		compress.New(processor, sink, log),
		fs,
		sink,
		log,
	)

	result, err := orch.Run(ctx, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}

	return finish(c, log, fs, sink, opts, result, summarizer.CaptureInfo{
		ViewportWidth:   cfg.ViewportWidth,
		ViewportHeight:  cfg.ViewportHeight,
		CookieDismissed: result.CookieDismissed,
		IdleTimedOut:    result.IdleTimedOut,
	})
}

func runCompress(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%s", l10n.T("Exactly one image argument is required"))
	}

	cfg, opts, err := buildConfig(c)
	if err != nil {
		return err
	}

	var explicit *pipeline.Region
	if s := c.String("region"); s != "" {
		r, err := pipeline.ParseRegion(s)
		if err != nil {
			return err
		}
		explicit = &r
	}

	log, err := newLogger(opts)
	if err != nil {
		return err
	}

	ctx, cancel := withSignals(c.Context, log)
	defer cancel()

	fs := osfilesystem.New()
	processor := imagekit.New()
	sink, err := newSink(opts, fs, processor)
	if err != nil {
		return err
	}

	orch := orchestrator.New(nil, region.NewStage(), crop.New(processor, sink, log), compress.New(processor, sink, log), fs, sink, log)
	result, err := orch.Compress(ctx, orchestrator.CompressConfig{
		InputPath:  c.Args().First(),
		OutputPath: cfg.OutputPath,
		Region:     explicit,
		MaxBytes:   cfg.MaxBytes,
		Budget:     cfg.BudgetOptions(),
	})
	if err != nil {
		return err
	}

	return finish(c, log, fs, sink, opts, result, summarizer.CaptureInfo{})
}

// buildConfig layers the preset, the config file and the flags, in that order.
func buildConfig(c *cli.Context) (eventshot.Config, runOptions, error) {
	file := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if file, err = config.LoadFromFile(path); err != nil {
			return eventshot.Config{}, runOptions{}, err
		}
	}
	if c.IsSet("preset") {
		file.Preset = c.String("preset")
	}

	builder, err := file.Builder()
	if err != nil {
		return eventshot.Config{}, runOptions{}, err
	}

	opts := runOptions{
		debug:    file.Debug,
		debugDir: file.DebugDir,
		summary:  file.Summary,
		logLevel: file.LogLevel,
	}
	if opts.logLevel == "" {
		opts.logLevel = "info"
	}

	set := func(name string, apply func()) {
		if c.IsSet(name) {
			apply()
		}
	}

	set("url", func() { builder.WithURL(c.String("url")) })
	set("output", func() { builder.WithOutputPath(c.String("output")) })

	set("engine", func() { builder.WithEngine(eventshot.Engine(c.String("engine"))) })
	set("no-headless", func() { builder.WithHeadless(!c.Bool("no-headless")) })
	set("chrome-path", func() { builder.WithChromePath(c.String("chrome-path")) })
	set("install-browser", func() { builder.WithAutoInstall(c.Bool("install-browser")) })
	set("user-agent", func() { builder.WithUserAgent(c.String("user-agent")) })
	set("ignore-https-errors", func() { builder.WithIgnoreHTTPSErrors(c.Bool("ignore-https-errors")) })
	set("proxy-server", func() { builder.WithProxyServer(c.String("proxy-server")) })
	if c.IsSet("header") {
		headers, err := parseHeaders(c.StringSlice("header"))
		if err != nil {
			return eventshot.Config{}, runOptions{}, err
		}
		builder.WithHeaders(headers)
	}

	if c.IsSet("viewport-width") || c.IsSet("viewport-height") {
		current := builder.Build()
		w, h := current.ViewportWidth, current.ViewportHeight
		set("viewport-width", func() { w = c.Int("viewport-width") })
		set("viewport-height", func() { h = c.Int("viewport-height") })
		builder.WithViewport(w, h)
	}
	set("full-page", func() { builder.WithFullPage(c.Bool("full-page")) })
	set("idle-timeout", func() { builder.WithIdleTimeout(c.Duration("idle-timeout")) })
	set("settle-delay", func() { builder.WithSettleDelay(c.Duration("settle-delay")) })
	set("no-cookie-dismiss", func() { builder.WithCookieDismissal(!c.Bool("no-cookie-dismiss")) })
	if c.IsSet("scroll-steps") || c.IsSet("scroll-step-px") {
		current := builder.Build()
		steps := current.ScrollSteps
		set("scroll-steps", func() { steps = c.Int("scroll-steps") })
		builder.WithScroll(steps, c.Int("scroll-step-px"))
	}
	set("scroll-delay", func() { builder.WithScrollDelay(c.Duration("scroll-delay")) })

	set("card-selector", func() { builder.WithCardSelector(c.String("card-selector")) })
	set("max-cards", func() { builder.WithMaxCards(c.Int("max-cards")) })
	set("padding", func() { builder.WithPadding(c.Int("padding")) })
	set("full-width", func() { builder.WithFullWidth(c.Bool("full-width")) })
	set("require-cards", func() { builder.WithRequireCards(c.Bool("require-cards")) })
	if c.IsSet("fallback") {
		fallback, err := parseFallback(c.String("fallback"))
		if err != nil {
			return eventshot.Config{}, runOptions{}, err
		}
		builder.WithFallback(fallback)
	}

	set("max-bytes", func() { builder.WithMaxBytes(c.Int("max-bytes")) })
	if c.IsSet("quality") || c.IsSet("min-quality") {
		current := builder.Build()
		initial, minimum := current.InitialQuality, current.MinQuality
		set("quality", func() { initial = c.Int("quality") })
		set("min-quality", func() { minimum = c.Int("min-quality") })
		builder.WithQuality(initial, minimum)
	}
	set("min-scale", func() { builder.WithMinScale(c.Float64("min-scale")) })
	set("step", func() { builder.WithStep(c.Float64("step")) })

	set("debug", func() { opts.debug = c.Bool("debug") })
	set("debug-dir", func() { opts.debugDir = c.String("debug-dir") })
	set("summary", func() { opts.summary = c.String("summary") })
	set("log-level", func() { opts.logLevel = c.String("log-level") })
	opts.quiet = c.Bool("quiet")

	return builder.Build(), opts, nil
}

// parseHeaders parses "Name: value" pairs.
func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header %q: expected Name: value", v)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parseFallback parses a fallback region. "none" disables the fallback.
func parseFallback(s string) (*pipeline.Region, error) {
	if strings.EqualFold(s, "none") || s == "" {
		return nil, nil
	}
	r, err := pipeline.ParseRegion(s)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func newLogger(opts runOptions) (ports.Logger, error) {
	if opts.quiet {
		return logger.NewNoop(), nil
	}
	level, err := ports.ParseLogLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	return logger.NewConsole(level), nil
}

func newSink(opts runOptions, fs ports.FileSystem, processor ports.ImageProcessor) (ports.DebugSink, error) {
	if !opts.debug {
		return nullsink.New(), nil
	}
	if err := fs.MkdirAll(opts.debugDir); err != nil {
		return nil, fmt.Errorf("create debug directory: %w", err)
	}
	return filesink.New(opts.debugDir, fs, processor), nil
}

func newBrowser(engine eventshot.Engine) (ports.Browser, error) {
	switch engine {
	case eventshot.EngineChromedp:
		return chromebrowser.New(), nil
	case eventshot.EnginePlaywright:
		return pwbrowser.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (available: %s, %s)", engine, eventshot.EngineChromedp, eventshot.EnginePlaywright)
	}
}

// savedLine formats the result line. It is not translated so scripts can
// parse it.
func savedLine(result orchestrator.RunResult) string {
	return fmt.Sprintf("Saved %s (%.1f KB)", result.OutputPath, float64(result.FileSize)/1024)
}

// withSignals cancels the returned context on SIGINT or SIGTERM.
func withSignals(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// finish prints the result line, reports debug output and writes the
// optional summary. The result line ignores the log level; only --quiet
// hides it.
func finish(c *cli.Context, log ports.Logger, fs ports.FileSystem, sink ports.DebugSink, opts runOptions, result orchestrator.RunResult, captureInfo summarizer.CaptureInfo) error {
	if !opts.quiet {
		fmt.Fprintln(c.App.Writer, savedLine(result))
	}

	if sink.Enabled() {
		log.Info("Debug output written to %s", opts.debugDir)
	}

	if opts.summary == "" {
		return nil
	}

	summary := summarizer.NewBuilder().
		WithPage(result.PageTitle, result.PageURL).
		WithCapture(captureInfo).
		WithRegion(summarizer.RegionInfo{
			Left:         result.Region.Left,
			Top:          result.Region.Top,
			Right:        result.Region.Right,
			Bottom:       result.Region.Bottom,
			Source:       string(result.RegionSource),
			CardCount:    result.CardCount,
			SourceWidth:  result.SourceWidth,
			SourceHeight: result.SourceHeight,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:         result.OutputPath,
			FileSize:     result.FileSize,
			MaxBytes:     result.MaxBytes,
			WithinBudget: result.WithinBudget,
			Quality:      result.Quality,
			Scale:        result.Scale,
			Width:        result.Width,
			Height:       result.Height,
		}).
		WithAttempts(result.Attempts).
		Build()

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(c.App.Version),
	)
	if err := summarizer.NewWriter(formatter, fs).Write(opts.summary, summary); err != nil {
		log.Error("Failed to write summary: %s", err)
		return err
	}

	log.Info("Summary written to %s", opts.summary)
	return nil
}
