// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/eventshot/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveScreenshot does nothing.
func (s *Sink) SaveScreenshot(data []byte) error {
	return nil
}

// SaveCaptureJSON does nothing.
func (s *Sink) SaveCaptureJSON(data []byte) error {
	return nil
}

// SaveOverlay does nothing.
func (s *Sink) SaveOverlay(img image.Image, boxes []image.Rectangle, region image.Rectangle) error {
	return nil
}

// SaveCropped does nothing.
func (s *Sink) SaveCropped(img image.Image) error {
	return nil
}

// SaveAttemptsJSON does nothing.
func (s *Sink) SaveAttemptsJSON(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
