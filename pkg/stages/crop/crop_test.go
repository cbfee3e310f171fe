package crop

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/user/eventshot/pkg/adapters/imagekit"
	"github.com/user/eventshot/pkg/adapters/logger"
	"github.com/user/eventshot/pkg/mocks"
	"github.com/user/eventshot/pkg/pipeline"
)

// screenshot returns a PNG whose bottom half is red.
func screenshot(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := h / 2; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestStage_Execute(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	stage := New(imagekit.New(), sink, logger.NewNoop())

	region := pipeline.Region{Left: 10, Top: 60, Right: 110, Bottom: 100}
	result, err := stage.Execute(context.Background(), pipeline.CropInput{
		ImageData: screenshot(t, 200, 100),
		Region:    &region,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Image.Bounds().Dx() != 100 || result.Image.Bounds().Dy() != 40 {
		t.Errorf("expected 100x40, got %v", result.Image.Bounds())
	}
	if r, _, _, _ := result.Image.At(5, 5).RGBA(); r>>8 != 255 {
		t.Errorf("expected red pixels from the bottom half, got r=%d", r>>8)
	}
	if result.Source.Bounds().Dx() != 200 {
		t.Errorf("expected source width 200, got %d", result.Source.Bounds().Dx())
	}
	if sink.Cropped == nil {
		t.Error("expected cropped image to be saved to debug sink")
	}
}

func TestStage_Execute_RegionHandling(t *testing.T) {
	tests := []struct {
		name    string
		region  *pipeline.Region
		want    pipeline.Region
		wantErr bool
	}{
		{"nil keeps whole image", nil, pipeline.Region{Right: 200, Bottom: 100}, false},
		{"clipped to image", &pipeline.Region{Left: 150, Top: 50, Right: 400, Bottom: 300}, pipeline.Region{Left: 150, Top: 50, Right: 200, Bottom: 100}, false},
		{"outside image", &pipeline.Region{Left: 300, Top: 0, Right: 400, Bottom: 50}, pipeline.Region{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := New(imagekit.New(), mocks.NewDebugSink(false), logger.NewNoop())

			result, err := stage.Execute(context.Background(), pipeline.CropInput{
				ImageData: screenshot(t, 200, 100),
				Region:    tt.region,
			})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Region != tt.want {
				t.Errorf("expected region %v, got %v", tt.want, result.Region)
			}
			if result.Image.Bounds().Dx() != tt.want.Width() || result.Image.Bounds().Dy() != tt.want.Height() {
				t.Errorf("image size %v does not match region %v", result.Image.Bounds(), tt.want)
			}
		})
	}
}

func TestStage_Execute_InvalidImage(t *testing.T) {
	stage := New(imagekit.New(), mocks.NewDebugSink(false), logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.CropInput{ImageData: []byte("garbage")}); err == nil {
		t.Error("expected decode error")
	}
}
