package pipeline

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/user/eventshot/pkg/budget"
	"github.com/user/eventshot/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Region is a crop rectangle in image pixels. Right and Bottom are exclusive.
type Region struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Right  int `json:"right" yaml:"right"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// Width returns the horizontal extent of the region.
func (r Region) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the region.
func (r Region) Height() int { return r.Bottom - r.Top }

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Clip intersects the region with bounds. The second value is false when
// nothing of the region lies inside bounds.
func (r Region) Clip(bounds image.Rectangle) (Region, bool) {
	c := Region{
		Left:   max(r.Left, bounds.Min.X),
		Top:    max(r.Top, bounds.Min.Y),
		Right:  min(r.Right, bounds.Max.X),
		Bottom: min(r.Bottom, bounds.Max.Y),
	}
	if c.Empty() {
		return Region{}, false
	}
	return c, true
}

// String formats the region as "left,top,right,bottom".
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

// ParseRegion parses "left,top,right,bottom".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: expected left,top,right,bottom", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	r := Region{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if r.Empty() {
		return Region{}, fmt.Errorf("region %q: left must be < right and top < bottom", s)
	}
	return r, nil
}

// RegionSource tells where a crop region came from.
type RegionSource string

const (
	SourceCards    RegionSource = "cards"
	SourceFallback RegionSource = "fallback"
	SourceFull     RegionSource = "full"
	SourceExplicit RegionSource = "explicit"
)

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput contains parameters for capturing the page.
type CaptureInput struct {
	URL      string
	Viewport Dimension
	FullPage bool

	IdleTimeout time.Duration // Upper bound on waiting for network idle
	SettleDelay time.Duration // Extra wait after idle for late rendering

	DismissCookies  bool
	CookieSelectors []string
	CookieLabels    []string

	ScrollSteps  int           // Number of scroll steps (0 disables scrolling)
	ScrollStepPx int           // Pixels per scroll step
	ScrollDelay  time.Duration // Pause after each scroll step

	CardSelector string

	Headers           map[string]string
	UserAgent         string
	IgnoreHTTPSErrors bool
	ProxyServer       string
}

// DefaultCaptureInput returns CaptureInput with default values.
func DefaultCaptureInput() CaptureInput {
	return CaptureInput{
		Viewport:     Dimension{Width: 1400, Height: 900},
		IdleTimeout:  30 * time.Second,
		SettleDelay:  3 * time.Second,
		ScrollStepPx: 600,
		ScrollDelay:  500 * time.Millisecond,
	}
}

// CaptureResult contains the captured screenshot and element geometry.
type CaptureResult struct {
	Screenshot      ports.Screenshot
	Boxes           []ports.Box
	PageInfo        ports.PageInfo
	CookieDismissed bool
	IdleTimedOut    bool
}

// =============================================================================
// Region Stage Types
// =============================================================================

// RegionInput contains parameters for computing the crop region.
type RegionInput struct {
	Boxes     []ports.Box
	OffsetX   int       // Document position of the screenshot origin
	OffsetY   int
	ImageSize Dimension // Screenshot size in pixels

	MaxCards     int     // Use only the first N cards in reading order (0 = all)
	Padding      int     // Pixels added around the card union
	FullWidth    bool    // Span the whole image width
	Fallback     *Region // Region used when no card is usable
	RequireCards bool    // Fail instead of falling back
}

// RegionResult contains the computed crop region.
type RegionResult struct {
	Region    Region
	Source    RegionSource
	CardCount int
	CardRects []image.Rectangle // Cards used, in image coordinates
}

// =============================================================================
// Crop Stage Types
// =============================================================================

// CropInput contains the encoded screenshot and the region to keep.
type CropInput struct {
	ImageData []byte
	Region    *Region // nil keeps the whole image
}

// CropResult contains the cropped bitmap.
type CropResult struct {
	Image  image.Image
	Source image.Image // The decoded screenshot, before cropping
	Region Region      // The region actually applied, after clipping
}

// =============================================================================
// Compress Stage Types
// =============================================================================

// CompressInput contains the bitmap and the byte budget.
type CompressInput struct {
	Image    image.Image
	MaxBytes int
	Options  budget.Options
}

// DefaultCompressInput returns CompressInput with default values.
func DefaultCompressInput() CompressInput {
	return CompressInput{
		MaxBytes: budget.DefaultMaxBytes,
		Options:  budget.DefaultOptions(),
	}
}

// CompressResult contains the budgeted encoding.
type CompressResult struct {
	Encoding budget.Result
}
