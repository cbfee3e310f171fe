package budget

import (
	"bytes"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// StdCodec encodes with image/jpeg and resamples with CatmullRom.
type StdCodec struct{}

// EncodeJPEG encodes img as a baseline JPEG.
func (StdCodec) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Resize resamples img to width x height.
func (StdCodec) Resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

var _ Codec = StdCodec{}
