package filesink

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

var (
	boxFill     = color.NRGBA{R: 0, G: 120, B: 255, A: 48}
	boxStroke   = color.NRGBA{R: 0, G: 120, B: 255, A: 255}
	regionColor = color.NRGBA{R: 255, G: 40, B: 40, A: 255}
)

// DrawOverlay returns a copy of img with boxes outlined in blue and region
// outlined in red. Coordinates are relative to img's bounds.
func DrawOverlay(img image.Image, boxes []image.Rectangle, region image.Rectangle) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	dc.SetLineWidth(2)
	for _, r := range boxes {
		rect(dc, r)
		dc.SetColor(boxFill)
		dc.FillPreserve()
		dc.SetColor(boxStroke)
		dc.Stroke()
	}

	if !region.Empty() {
		dc.SetLineWidth(4)
		dc.SetDash(12, 6)
		rect(dc, region)
		dc.SetColor(regionColor)
		dc.Stroke()
	}

	return dc.Image()
}

func rect(dc *gg.Context, r image.Rectangle) {
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}
