// Package imagekit provides an image processor built on the imaging library.
package imagekit

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/user/eventshot/pkg/ports"
)

// Processor implements ports.ImageProcessor.
type Processor struct {
	filter imaging.ResampleFilter
}

// New creates a Processor that resamples with Lanczos.
func New() *Processor {
	return &Processor{filter: imaging.Lanczos}
}

// NewWithFilter creates a Processor with a specific resampling filter.
func NewWithFilter(filter imaging.ResampleFilter) *Processor {
	return &Processor{filter: filter}
}

// DecodeImage decodes image data into an image.Image.
func (p *Processor) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// CropImage returns the part of img inside rect as a new NRGBA image at (0,0).
func (p *Processor) CropImage(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect)
}

// Resize resamples img to width x height.
func (p *Processor) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, p.filter)
}

// EncodeJPEG encodes img as a JPEG at the given quality.
func (p *Processor) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img as a PNG at best compression.
func (p *Processor) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Ensure Processor implements ports.ImageProcessor
var _ ports.ImageProcessor = (*Processor)(nil)
