// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // screenshot and input decoders for DecodeConfig
	_ "image/png"
	"time"

	"github.com/user/eventshot/pkg/budget"
	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

// Config contains all configuration for a capture run.
type Config struct {
	// Input
	URL        string
	OutputPath string

	// Capture
	Viewport        pipeline.Dimension
	FullPage        bool
	IdleTimeout     time.Duration
	SettleDelay     time.Duration
	DismissCookies  bool
	CookieSelectors []string
	CookieLabels    []string
	ScrollSteps     int
	ScrollStepPx    int
	ScrollDelay     time.Duration
	CardSelector    string
	Headers         map[string]string

	// Browser options
	UserAgent         string
	IgnoreHTTPSErrors bool
	ProxyServer       string

	// Region
	MaxCards     int
	Padding      int
	FullWidth    bool
	Fallback     *pipeline.Region
	RequireCards bool

	// Compression
	MaxBytes int
	Budget   budget.Options
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	capture := pipeline.DefaultCaptureInput()
	compress := pipeline.DefaultCompressInput()
	return Config{
		OutputPath:   "events.jpg",
		Viewport:     capture.Viewport,
		IdleTimeout:  capture.IdleTimeout,
		SettleDelay:  capture.SettleDelay,
		ScrollStepPx: capture.ScrollStepPx,
		ScrollDelay:  capture.ScrollDelay,
		MaxBytes:     compress.MaxBytes,
		Budget:       compress.Options,
	}
}

// CompressConfig configures compression of an existing image file.
type CompressConfig struct {
	InputPath  string
	OutputPath string
	Region     *pipeline.Region // nil keeps the whole image
	MaxBytes   int
	Budget     budget.Options
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	captureStage  pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult]
	regionStage   pipeline.Stage[pipeline.RegionInput, pipeline.RegionResult]
	cropStage     pipeline.Stage[pipeline.CropInput, pipeline.CropResult]
	compressStage pipeline.Stage[pipeline.CompressInput, pipeline.CompressResult]
	fs            ports.FileSystem
	sink          ports.DebugSink
	logger        ports.Logger
}

// New creates a new Orchestrator.
func New(
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult],
	regionStage pipeline.Stage[pipeline.RegionInput, pipeline.RegionResult],
	cropStage pipeline.Stage[pipeline.CropInput, pipeline.CropResult],
	compressStage pipeline.Stage[pipeline.CompressInput, pipeline.CompressResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		captureStage:  captureStage,
		regionStage:   regionStage,
		cropStage:     cropStage,
		compressStage: compressStage,
		fs:            fs,
		sink:          sink,
		logger:        logger,
	}
}

// captureDebug is the JSON document saved to the debug sink after capture.
type captureDebug struct {
	URL             string         `json:"url"`
	PageInfo        ports.PageInfo `json:"page"`
	OffsetX         int            `json:"offsetX"`
	OffsetY         int            `json:"offsetY"`
	ImageWidth      int            `json:"imageWidth"`
	ImageHeight     int            `json:"imageHeight"`
	Boxes           []ports.Box    `json:"boxes"`
	CookieDismissed bool           `json:"cookieDismissed"`
	IdleTimedOut    bool           `json:"idleTimedOut"`
}

// Run captures the page, crops it to the event cards and writes a JPEG within
// the byte budget.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info("Capturing %s", config.URL)

	// 1. Capture page
	capture, err := o.captureStage.Execute(ctx, o.buildCaptureInput(config))
	if err != nil {
		o.logger.Error("Failed to capture page: %s", err)
		return RunResult{}, fmt.Errorf("capture stage: %w", err)
	}

	size, err := imageSize(capture.Screenshot.Data)
	if err != nil {
		return RunResult{}, fmt.Errorf("read screenshot: %w", err)
	}

	if o.sink.Enabled() {
		doc := captureDebug{
			URL:             config.URL,
			PageInfo:        capture.PageInfo,
			OffsetX:         capture.Screenshot.OffsetX,
			OffsetY:         capture.Screenshot.OffsetY,
			ImageWidth:      size.Width,
			ImageHeight:     size.Height,
			Boxes:           capture.Boxes,
			CookieDismissed: capture.CookieDismissed,
			IdleTimedOut:    capture.IdleTimedOut,
		}
		if data, err := json.MarshalIndent(doc, "", "  "); err == nil {
			o.sink.SaveCaptureJSON(data)
		}
	}

	// 2. Compute crop region
	region, err := o.regionStage.Execute(ctx, o.buildRegionInput(config, capture, size))
	if err != nil {
		return RunResult{}, fmt.Errorf("region stage: %w", err)
	}
	switch region.Source {
	case pipeline.SourceCards:
		o.logger.Info("Cropping to %d card(s): %s", region.CardCount, region.Region)
	case pipeline.SourceFallback:
		o.logger.Warn("No cards found, using fallback region %s", region.Region)
	default:
		o.logger.Warn("No cards found, using full image")
	}

	// 3. Crop, 4. compress, 5. write
	result, crop, err := o.finish(ctx, capture.Screenshot.Data, &region.Region, config.MaxBytes, config.Budget, config.OutputPath)
	if err != nil {
		return RunResult{}, err
	}

	if o.sink.Enabled() {
		o.sink.SaveOverlay(crop.Source, region.CardRects, crop.Region.Rect())
	}

	result.RegionSource = region.Source
	result.CardCount = region.CardCount
	result.PageTitle = capture.PageInfo.Title
	result.PageURL = capture.PageInfo.URL
	result.CookieDismissed = capture.CookieDismissed
	result.IdleTimedOut = capture.IdleTimedOut

	o.logger.Info("Pipeline completed successfully")
	return result, nil
}

// Compress budget-encodes an existing image file, optionally cropped to an
// explicit region. No browser is involved.
func (o *Orchestrator) Compress(ctx context.Context, config CompressConfig) (RunResult, error) {
	o.logger.Info("Compressing %s", config.InputPath)

	data, err := o.fs.ReadFile(config.InputPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("read input: %w", err)
	}

	if config.Region != nil {
		o.logger.Info("Using explicit region %s", *config.Region)
	}

	result, _, err := o.finish(ctx, data, config.Region, config.MaxBytes, config.Budget, config.OutputPath)
	if err != nil {
		return RunResult{}, err
	}
	result.RegionSource = pipeline.SourceFull
	if config.Region != nil {
		result.RegionSource = pipeline.SourceExplicit
	}
	return result, nil
}

// finish runs crop and compress on encoded image data and writes the JPEG.
func (o *Orchestrator) finish(
	ctx context.Context,
	data []byte,
	region *pipeline.Region,
	maxBytes int,
	opts budget.Options,
	outputPath string,
) (RunResult, pipeline.CropResult, error) {
	crop, err := o.cropStage.Execute(ctx, pipeline.CropInput{ImageData: data, Region: region})
	if err != nil {
		return RunResult{}, crop, fmt.Errorf("crop stage: %w", err)
	}

	compressed, err := o.compressStage.Execute(ctx, pipeline.CompressInput{
		Image:    crop.Image,
		MaxBytes: maxBytes,
		Options:  opts,
	})
	if err != nil {
		return RunResult{}, crop, fmt.Errorf("compress stage: %w", err)
	}
	enc := compressed.Encoding

	if err := o.fs.WriteFile(outputPath, enc.Data); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return RunResult{}, crop, fmt.Errorf("write output: %w", err)
	}
	o.logger.Debug("Wrote %d bytes to %s", len(enc.Data), outputPath)

	b := crop.Source.Bounds()
	return RunResult{
		OutputPath:   outputPath,
		FileSize:     int64(len(enc.Data)),
		MaxBytes:     maxBytes,
		WithinBudget: enc.WithinBudget,
		Quality:      enc.Quality,
		Scale:        enc.Scale,
		Width:        enc.Width,
		Height:       enc.Height,
		Attempts:     enc.Attempts,
		Region:       crop.Region,
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
	}, crop, nil
}

func (o *Orchestrator) buildCaptureInput(config Config) pipeline.CaptureInput {
	return pipeline.CaptureInput{
		URL:               config.URL,
		Viewport:          config.Viewport,
		FullPage:          config.FullPage,
		IdleTimeout:       config.IdleTimeout,
		SettleDelay:       config.SettleDelay,
		DismissCookies:    config.DismissCookies,
		CookieSelectors:   config.CookieSelectors,
		CookieLabels:      config.CookieLabels,
		ScrollSteps:       config.ScrollSteps,
		ScrollStepPx:      config.ScrollStepPx,
		ScrollDelay:       config.ScrollDelay,
		CardSelector:      config.CardSelector,
		Headers:           config.Headers,
		UserAgent:         config.UserAgent,
		IgnoreHTTPSErrors: config.IgnoreHTTPSErrors,
		ProxyServer:       config.ProxyServer,
	}
}

func (o *Orchestrator) buildRegionInput(config Config, capture pipeline.CaptureResult, size pipeline.Dimension) pipeline.RegionInput {
	return pipeline.RegionInput{
		Boxes:        capture.Boxes,
		OffsetX:      capture.Screenshot.OffsetX,
		OffsetY:      capture.Screenshot.OffsetY,
		ImageSize:    size,
		MaxCards:     config.MaxCards,
		Padding:      config.Padding,
		FullWidth:    config.FullWidth,
		Fallback:     config.Fallback,
		RequireCards: config.RequireCards,
	}
}

func imageSize(data []byte) (pipeline.Dimension, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pipeline.Dimension{}, err
	}
	return pipeline.Dimension{Width: cfg.Width, Height: cfg.Height}, nil
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	// Output
	OutputPath   string
	FileSize     int64
	MaxBytes     int
	WithinBudget bool
	Quality      int
	Scale        float64
	Width        int
	Height       int
	Attempts     []budget.Attempt

	// Region
	Region       pipeline.Region
	RegionSource pipeline.RegionSource
	CardCount    int
	SourceWidth  int
	SourceHeight int

	// Page information
	PageTitle       string
	PageURL         string
	CookieDismissed bool
	IdleTimedOut    bool
}
