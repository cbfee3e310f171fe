// Package compress implements the size-budgeted JPEG encoding stage.
package compress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/user/eventshot/pkg/budget"
	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

// Stage encodes an image as a JPEG no larger than the byte budget.
type Stage struct {
	encoder *budget.Encoder
	sink    ports.DebugSink
	logger  ports.Logger
}

// New creates a new compress stage. The processor serves as the JPEG codec
// and resampler.
func New(processor ports.ImageProcessor, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		encoder: budget.NewEncoder(processor),
		sink:    sink,
		logger:  logger.WithComponent("compress"),
	}
}

// Execute runs the budget search. Missing the budget is not an error; the
// result then carries the most reduced encoding with WithinBudget unset.
func (s *Stage) Execute(ctx context.Context, input pipeline.CompressInput) (pipeline.CompressResult, error) {
	var result pipeline.CompressResult
	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Debug("Compressing to at most %s", humanize.Bytes(uint64(max(input.MaxBytes, 0))))

	enc, err := s.encoder.Encode(input.Image, input.MaxBytes, input.Options)
	if err != nil {
		return result, fmt.Errorf("budget encode: %w", err)
	}
	result.Encoding = enc

	for i, a := range enc.Attempts {
		s.logger.Debug("Attempt %d: quality %d, scale %.3f, %dx%d, %s",
			i+1, a.Quality, a.Scale, a.Width, a.Height, humanize.Bytes(uint64(a.Size)))
	}

	if enc.WithinBudget {
		s.logger.Debug("Encoded %s at quality %d, scale %.2f", humanize.Bytes(uint64(enc.Size)), enc.Quality, enc.Scale)
	} else {
		s.logger.Warn("Could not meet budget of %s, best effort is %s",
			humanize.Bytes(uint64(input.MaxBytes)), humanize.Bytes(uint64(enc.Size)))
	}

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(enc.Attempts, "", "  "); err == nil {
			s.sink.SaveAttemptsJSON(data)
		}
	}

	return result, nil
}
