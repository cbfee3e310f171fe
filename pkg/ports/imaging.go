package ports

import (
	"image"
)

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
	// FormatAuto detects the format from the data when decoding.
	FormatAuto
)

// ImageProcessor abstracts the bitmap operations of the pipeline.
// Any ImageProcessor can serve as the codec of a budget.Encoder.
type ImageProcessor interface {
	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// CropImage returns the part of img inside rect, re-based to (0,0).
	CropImage(img image.Image, rect image.Rectangle) image.Image

	// Resize resamples img to the given dimensions with a smoothing filter.
	Resize(img image.Image, width, height int) image.Image

	// EncodeJPEG encodes img as a JPEG at the given quality.
	EncodeJPEG(img image.Image, quality int) ([]byte, error)

	// EncodePNG encodes img as a PNG.
	EncodePNG(img image.Image) ([]byte, error)
}
