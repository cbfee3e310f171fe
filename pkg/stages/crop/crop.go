// Package crop implements the crop stage.
package crop

import (
	"context"
	"fmt"

	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

// Stage decodes the screenshot and crops it to the region.
type Stage struct {
	processor ports.ImageProcessor
	sink      ports.DebugSink
	logger    ports.Logger
}

// New creates a new crop stage.
func New(processor ports.ImageProcessor, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		processor: processor,
		sink:      sink,
		logger:    logger.WithComponent("crop"),
	}
}

// Execute crops the encoded image in input to input.Region. A nil region keeps
// the whole image; a region reaching past the image is clipped to it.
func (s *Stage) Execute(ctx context.Context, input pipeline.CropInput) (pipeline.CropResult, error) {
	var result pipeline.CropResult

	src, err := s.processor.DecodeImage(input.ImageData, ports.FormatAuto)
	if err != nil {
		return result, fmt.Errorf("decode screenshot: %w", err)
	}
	result.Source = src

	b := src.Bounds()
	region := pipeline.Region{Left: b.Min.X, Top: b.Min.Y, Right: b.Max.X, Bottom: b.Max.Y}
	if input.Region != nil {
		clipped, ok := input.Region.Clip(b)
		if !ok {
			return result, fmt.Errorf("region %s lies outside the %dx%d image", input.Region, b.Dx(), b.Dy())
		}
		region = clipped
	}
	result.Region = region

	if region.Rect() == b {
		result.Image = src
	} else {
		result.Image = s.processor.CropImage(src, region.Rect())
	}
	s.logger.Debug("Cropped to %dx%d", region.Width(), region.Height())

	if s.sink.Enabled() {
		s.sink.SaveCropped(result.Image)
	}

	return result, nil
}
