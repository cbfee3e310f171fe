package region

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

func screenshotInput(boxes ...ports.Box) pipeline.RegionInput {
	return pipeline.RegionInput{
		Boxes:     boxes,
		ImageSize: pipeline.Dimension{Width: 1400, Height: 900},
	}
}

func TestComputeRegion_UnionOfCards(t *testing.T) {
	input := screenshotInput(
		ports.Box{X: 100, Y: 200, Width: 300, Height: 400},
		ports.Box{X: 450, Y: 210, Width: 300, Height: 380},
		ports.Box{X: 800, Y: 205.5, Width: 300.2, Height: 400},
	)

	result, err := ComputeRegion(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := pipeline.Region{Left: 100, Top: 200, Right: 1101, Bottom: 606}
	if result.Region != want {
		t.Errorf("expected %v, got %v", want, result.Region)
	}
	if result.Source != pipeline.SourceCards {
		t.Errorf("expected source cards, got %s", result.Source)
	}
	if result.CardCount != 3 {
		t.Errorf("expected 3 cards, got %d", result.CardCount)
	}
}

func TestComputeRegion_PaddingIsClipped(t *testing.T) {
	input := screenshotInput(ports.Box{X: 10, Y: 850, Width: 200, Height: 100})
	input.Padding = 20

	result, err := ComputeRegion(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := pipeline.Region{Left: 0, Top: 830, Right: 230, Bottom: 900}
	if result.Region != want {
		t.Errorf("expected %v, got %v", want, result.Region)
	}
}

func TestComputeRegion_MaxCardsInReadingOrder(t *testing.T) {
	// Deliberately out of document order.
	input := screenshotInput(
		ports.Box{X: 100, Y: 600, Width: 200, Height: 200}, // second row
		ports.Box{X: 400, Y: 100, Width: 200, Height: 200}, // first row, right
		ports.Box{X: 100, Y: 100, Width: 200, Height: 200}, // first row, left
	)
	input.MaxCards = 2

	result, err := ComputeRegion(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := pipeline.Region{Left: 100, Top: 100, Right: 600, Bottom: 300}
	if result.Region != want {
		t.Errorf("expected %v, got %v", want, result.Region)
	}
	if result.CardCount != 2 {
		t.Errorf("expected 2 cards, got %d", result.CardCount)
	}
	if result.CardRects[0] != image.Rect(100, 100, 300, 300) {
		t.Errorf("expected first card at left of first row, got %v", result.CardRects[0])
	}
}

func TestComputeRegion_NestedMatchesCountOnce(t *testing.T) {
	// "article, .event" matches both an article and the .event inside it.
	input := screenshotInput(
		ports.Box{X: 100, Y: 100, Width: 300, Height: 300},
		ports.Box{X: 110, Y: 110, Width: 280, Height: 200},
		ports.Box{X: 450, Y: 100, Width: 300, Height: 300},
		ports.Box{X: 450, Y: 100, Width: 300, Height: 300},
		ports.Box{X: 100, Y: 500, Width: 300, Height: 300},
	)
	input.MaxCards = 2

	result, err := ComputeRegion(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := pipeline.Region{Left: 100, Top: 100, Right: 750, Bottom: 400}
	if result.Region != want {
		t.Errorf("expected %v, got %v", want, result.Region)
	}
	if result.CardCount != 2 {
		t.Errorf("expected 2 cards, got %d", result.CardCount)
	}
}

func TestComputeRegion_ScrollOffset(t *testing.T) {
	// Viewport screenshot taken while scrolled 1000px down.
	input := screenshotInput(
		ports.Box{X: 0, Y: 200, Width: 100, Height: 100},   // above the viewport
		ports.Box{X: 50, Y: 1100, Width: 200, Height: 300}, // visible
	)
	input.OffsetY = 1000

	result, err := ComputeRegion(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := pipeline.Region{Left: 50, Top: 100, Right: 250, Bottom: 400}
	if result.Region != want {
		t.Errorf("expected %v, got %v", want, result.Region)
	}
	if result.CardCount != 1 {
		t.Errorf("expected only the visible card, got %d", result.CardCount)
	}
}

func TestComputeRegion_FullWidth(t *testing.T) {
	input := screenshotInput(ports.Box{X: 300, Y: 150, Width: 400, Height: 600})
	input.FullWidth = true

	result, err := ComputeRegion(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := pipeline.Region{Left: 0, Top: 150, Right: 1400, Bottom: 750}
	if result.Region != want {
		t.Errorf("expected %v, got %v", want, result.Region)
	}
}

func TestComputeRegion_Fallback(t *testing.T) {
	fallback := pipeline.Region{Left: 0, Top: 150, Right: 1400, Bottom: 750}

	tests := []struct {
		name       string
		boxes      []ports.Box
		fallback   *pipeline.Region
		want       pipeline.Region
		wantSource pipeline.RegionSource
	}{
		{
			name:       "no boxes",
			fallback:   &fallback,
			want:       fallback,
			wantSource: pipeline.SourceFallback,
		},
		{
			name:       "only hidden boxes",
			boxes:      []ports.Box{{X: 10, Y: 10, Width: 0, Height: 50}},
			fallback:   &fallback,
			want:       fallback,
			wantSource: pipeline.SourceFallback,
		},
		{
			name:       "boxes outside screenshot",
			boxes:      []ports.Box{{X: 10, Y: 2000, Width: 100, Height: 50}},
			fallback:   &fallback,
			want:       fallback,
			wantSource: pipeline.SourceFallback,
		},
		{
			name:       "no fallback",
			want:       pipeline.Region{Left: 0, Top: 0, Right: 1400, Bottom: 900},
			wantSource: pipeline.SourceFull,
		},
		{
			name:       "fallback outside screenshot",
			fallback:   &pipeline.Region{Left: 0, Top: 1000, Right: 100, Bottom: 1200},
			want:       pipeline.Region{Left: 0, Top: 0, Right: 1400, Bottom: 900},
			wantSource: pipeline.SourceFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := screenshotInput(tt.boxes...)
			input.Fallback = tt.fallback

			result, err := ComputeRegion(input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Region != tt.want {
				t.Errorf("expected %v, got %v", tt.want, result.Region)
			}
			if result.Source != tt.wantSource {
				t.Errorf("expected source %s, got %s", tt.wantSource, result.Source)
			}
			if result.CardCount != 0 {
				t.Errorf("expected no cards, got %d", result.CardCount)
			}
		})
	}
}

func TestComputeRegion_RequireCards(t *testing.T) {
	input := screenshotInput()
	input.RequireCards = true

	_, err := ComputeRegion(input)
	if !errors.Is(err, ErrNoCards) {
		t.Errorf("expected ErrNoCards, got %v", err)
	}
}

func TestComputeRegion_EmptyScreenshot(t *testing.T) {
	_, err := ComputeRegion(pipeline.RegionInput{})
	if err == nil {
		t.Error("expected error for empty screenshot")
	}
}

func TestStage_Execute(t *testing.T) {
	stage := NewStage()
	input := screenshotInput(ports.Box{X: 0, Y: 0, Width: 10, Height: 10})

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	direct, _ := ComputeRegion(input)
	if result.Region != direct.Region {
		t.Errorf("Execute and ComputeRegion disagree: %v vs %v", result.Region, direct.Region)
	}
}
