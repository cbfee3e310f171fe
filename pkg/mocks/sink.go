package mocks

import (
	"image"
	"sync"

	"github.com/user/eventshot/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Screenshot    []byte
	CaptureJSON   []byte
	OverlayImage  image.Image
	OverlayBoxes  []image.Rectangle
	OverlayRegion image.Rectangle
	Cropped       image.Image
	AttemptsJSON  []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveScreenshot(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Screenshot = data
	return nil
}

func (m *DebugSink) SaveCaptureJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CaptureJSON = data
	return nil
}

func (m *DebugSink) SaveOverlay(img image.Image, boxes []image.Rectangle, region image.Rectangle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OverlayImage = img
	m.OverlayBoxes = boxes
	m.OverlayRegion = region
	return nil
}

func (m *DebugSink) SaveCropped(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cropped = img
	return nil
}

func (m *DebugSink) SaveAttemptsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttemptsJSON = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
