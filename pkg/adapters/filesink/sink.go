// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/eventshot/pkg/ports"
)

// File names written below the base directory.
const (
	ScreenshotFile = "screenshot.png"
	CaptureFile    = "capture.json"
	OverlayFile    = "overlay.png"
	CroppedFile    = "cropped.png"
	AttemptsFile   = "attempts.json"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir   string
	fs        ports.FileSystem
	processor ports.ImageProcessor
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, processor ports.ImageProcessor) *Sink {
	return &Sink{
		baseDir:   baseDir,
		fs:        fs,
		processor: processor,
	}
}

// Dir returns the base directory.
func (s *Sink) Dir() string {
	return s.baseDir
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

func (s *Sink) write(name string, data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), data)
}

func (s *Sink) writePNG(name string, img image.Image) error {
	data, err := s.processor.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.write(name, data)
}

// SaveScreenshot saves the raw screenshot.
func (s *Sink) SaveScreenshot(data []byte) error {
	return s.write(ScreenshotFile, data)
}

// SaveCaptureJSON saves the capture metadata.
func (s *Sink) SaveCaptureJSON(data []byte) error {
	return s.write(CaptureFile, data)
}

// SaveOverlay draws the card boxes and the crop region over img.
func (s *Sink) SaveOverlay(img image.Image, boxes []image.Rectangle, region image.Rectangle) error {
	return s.writePNG(OverlayFile, DrawOverlay(img, boxes, region))
}

// SaveCropped saves the cropped image before compression.
func (s *Sink) SaveCropped(img image.Image) error {
	return s.writePNG(CroppedFile, img)
}

// SaveAttemptsJSON saves the compression attempts.
func (s *Sink) SaveAttemptsJSON(data []byte) error {
	return s.write(AttemptsFile, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
