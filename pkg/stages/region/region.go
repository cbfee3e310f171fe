// Package region implements the crop region stage.
package region

import (
	"context"
	"errors"
	"image"
	"math"
	"sort"

	"github.com/user/eventshot/pkg/pipeline"
	"github.com/user/eventshot/pkg/ports"
)

// ErrNoCards is returned when cards are required but none lie on the screenshot.
var ErrNoCards = errors.New("no cards found on screenshot")

// Stage computes the crop region from the card boxes.
// It has no external dependencies.
type Stage struct{}

// NewStage creates a new region stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute computes the crop region for the input.
func (s *Stage) Execute(ctx context.Context, input pipeline.RegionInput) (pipeline.RegionResult, error) {
	return ComputeRegion(input)
}

// ComputeRegion derives the crop region from card boxes.
//
// Boxes are in document coordinates; the screenshot offset maps them onto the
// image. Cards are taken in reading order (top, then left) and only those that
// overlap the image count. The union of the kept cards is padded, optionally
// stretched to the full image width, and clipped. Without usable cards the
// fallback region is used, and without a usable fallback the whole image.
func ComputeRegion(input pipeline.RegionInput) (pipeline.RegionResult, error) {
	bounds := image.Rect(0, 0, input.ImageSize.Width, input.ImageSize.Height)
	if bounds.Empty() {
		return pipeline.RegionResult{}, errors.New("empty screenshot")
	}

	cards := cardRects(input.Boxes, input.OffsetX, input.OffsetY, bounds)
	if input.MaxCards > 0 && len(cards) > input.MaxCards {
		cards = cards[:input.MaxCards]
	}

	if len(cards) > 0 {
		union := cards[0]
		for _, c := range cards[1:] {
			union = union.Union(c)
		}
		union = union.Inset(-input.Padding)

		r := pipeline.Region{
			Left:   union.Min.X,
			Top:    union.Min.Y,
			Right:  union.Max.X,
			Bottom: union.Max.Y,
		}
		if input.FullWidth {
			r.Left = bounds.Min.X
			r.Right = bounds.Max.X
		}
		if clipped, ok := r.Clip(bounds); ok {
			return pipeline.RegionResult{
				Region:    clipped,
				Source:    pipeline.SourceCards,
				CardCount: len(cards),
				CardRects: cards,
			}, nil
		}
	}

	if input.RequireCards {
		return pipeline.RegionResult{}, ErrNoCards
	}

	if input.Fallback != nil {
		if clipped, ok := input.Fallback.Clip(bounds); ok {
			return pipeline.RegionResult{
				Region: clipped,
				Source: pipeline.SourceFallback,
			}, nil
		}
	}

	return pipeline.RegionResult{
		Region: pipeline.Region{Right: bounds.Dx(), Bottom: bounds.Dy()},
		Source: pipeline.SourceFull,
	}, nil
}

// cardRects converts boxes to image rectangles in reading order, dropping
// empty boxes, boxes outside the image and boxes nested in an earlier card.
func cardRects(boxes []ports.Box, offsetX, offsetY int, bounds image.Rectangle) []image.Rectangle {
	sorted := make([]ports.Box, 0, len(boxes))
	for _, b := range boxes {
		if b.Width > 0 && b.Height > 0 {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	rects := make([]image.Rectangle, 0, len(sorted))
	for _, b := range sorted {
		r := image.Rect(
			int(math.Floor(b.X))-offsetX,
			int(math.Floor(b.Y))-offsetY,
			int(math.Ceil(b.Right()))-offsetX,
			int(math.Ceil(b.Bottom()))-offsetY,
		).Intersect(bounds)
		if r.Empty() || nested(r, rects) {
			continue
		}
		rects = append(rects, r)
	}
	return rects
}

// nested reports whether r lies inside one of cards. A selector list can match
// a card and its child; the child must not count as a second card.
func nested(r image.Rectangle, cards []image.Rectangle) bool {
	for _, c := range cards {
		if r.In(c) {
			return true
		}
	}
	return false
}
