package ports

import (
	"image"
)

// DebugSink receives intermediate artefacts of a capture run.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveScreenshot saves the raw PNG screenshot.
	SaveScreenshot(data []byte) error

	// SaveCaptureJSON saves the capture metadata (boxes, page info) as JSON.
	SaveCaptureJSON(data []byte) error

	// SaveOverlay saves the screenshot annotated with the card boxes and the
	// crop region. Boxes and region are in image coordinates.
	SaveOverlay(img image.Image, boxes []image.Rectangle, region image.Rectangle) error

	// SaveCropped saves the cropped image before compression.
	SaveCropped(img image.Image) error

	// SaveAttemptsJSON saves the list of compression attempts as JSON.
	SaveAttemptsJSON(data []byte) error
}
