// Package budget re-encodes images as JPEG under a byte-size ceiling.
//
// The search lowers JPEG quality first. Once quality reaches its floor it
// shrinks the image instead, always resampling from the original so that
// repeated passes never compound resampling blur. When the budget cannot be
// met within the configured floors, the last (most reduced) encoding is
// returned rather than an error.
package budget

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrEmptyImage is returned when the source image is nil or has no pixels.
	ErrEmptyImage = errors.New("budget: empty image")

	// ErrInvalidBudget is returned when the byte budget is not positive.
	ErrInvalidBudget = errors.New("budget: byte budget must be positive")

	// ErrInvalidOptions is returned when the search bounds are inconsistent.
	ErrInvalidOptions = errors.New("budget: invalid options")
)

// Default search bounds.
const (
	DefaultInitialQuality = 70
	DefaultMinQuality     = 30
	DefaultMinScale       = 0.2
	DefaultStep           = 0.9

	// DefaultMaxBytes is the budget used when the caller has no preference.
	DefaultMaxBytes = 100_000
)

// Options bounds the quality/scale search. Zero values take the defaults.
type Options struct {
	InitialQuality int     // JPEG quality of the first attempt (1-100)
	MinQuality     int     // Lowest quality tried before downscaling
	MinScale       float64 // Smallest scale factor tried, in (0, 1]
	Step           float64 // Multiplier applied to quality or scale per retry, in (0, 1)
}

// DefaultOptions returns the standard search bounds.
func DefaultOptions() Options {
	return Options{
		InitialQuality: DefaultInitialQuality,
		MinQuality:     DefaultMinQuality,
		MinScale:       DefaultMinScale,
		Step:           DefaultStep,
	}
}

func (o Options) withDefaults() Options {
	if o.InitialQuality == 0 {
		o.InitialQuality = DefaultInitialQuality
	}
	if o.MinQuality == 0 {
		o.MinQuality = DefaultMinQuality
		if o.MinQuality > o.InitialQuality {
			o.MinQuality = o.InitialQuality
		}
	}
	if o.MinScale == 0 {
		o.MinScale = DefaultMinScale
	}
	if o.Step == 0 {
		o.Step = DefaultStep
	}
	return o
}

// Validate reports whether the options describe a terminating search.
func (o Options) Validate() error {
	switch {
	case o.InitialQuality < 1 || o.InitialQuality > 100:
		return fmt.Errorf("%w: initial quality %d out of range 1-100", ErrInvalidOptions, o.InitialQuality)
	case o.MinQuality < 1 || o.MinQuality > o.InitialQuality:
		return fmt.Errorf("%w: min quality %d out of range 1-%d", ErrInvalidOptions, o.MinQuality, o.InitialQuality)
	case o.MinScale <= 0 || o.MinScale > 1:
		return fmt.Errorf("%w: min scale %g out of range (0, 1]", ErrInvalidOptions, o.MinScale)
	case o.Step <= 0 || o.Step >= 1:
		return fmt.Errorf("%w: step %g out of range (0, 1)", ErrInvalidOptions, o.Step)
	}
	return nil
}

// Attempt records one encoding pass.
type Attempt struct {
	Quality int     `json:"quality"`
	Scale   float64 `json:"scale"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Size    int     `json:"size"`
}

// Result is the outcome of a budgeted encode.
type Result struct {
	Data    []byte
	Quality int
	Scale   float64
	Size    int
	Width   int
	Height  int

	// WithinBudget is false when the floors were reached without meeting the
	// budget. Data then holds the last, most reduced encoding.
	WithinBudget bool

	Attempts []Attempt
}

// Codec encodes and resamples images for the search.
type Codec interface {
	// EncodeJPEG encodes img as a JPEG at the given quality.
	EncodeJPEG(img image.Image, quality int) ([]byte, error)

	// Resize resamples img to the given dimensions with a smoothing filter.
	Resize(img image.Image, width, height int) image.Image
}

// Encoder runs the size-constrained search with a specific Codec.
type Encoder struct {
	codec Codec
}

// NewEncoder creates an Encoder. A nil codec selects the standard library
// JPEG encoder with CatmullRom resampling.
func NewEncoder(codec Codec) *Encoder {
	if codec == nil {
		codec = StdCodec{}
	}
	return &Encoder{codec: codec}
}

// Encode encodes img with the standard codec. See Encoder.Encode.
func Encode(img image.Image, maxBytes int, opts Options) (Result, error) {
	return NewEncoder(nil).Encode(img, maxBytes, opts)
}

// Encode searches for the highest quality, then the largest scale, whose JPEG
// encoding of img fits in maxBytes.
func (e *Encoder) Encode(img image.Image, maxBytes int, opts Options) (Result, error) {
	if img == nil || img.Bounds().Empty() {
		return Result{}, ErrEmptyImage
	}
	if maxBytes <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidBudget, maxBytes)
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	quality := opts.InitialQuality
	scale := 1.0
	current := img
	var result Result

	for {
		data, err := e.codec.EncodeJPEG(current, quality)
		if err != nil {
			return Result{}, fmt.Errorf("encode at quality %d, scale %.3f: %w", quality, scale, err)
		}

		bounds := current.Bounds()
		attempt := Attempt{
			Quality: quality,
			Scale:   scale,
			Width:   bounds.Dx(),
			Height:  bounds.Dy(),
			Size:    len(data),
		}
		result.Attempts = append(result.Attempts, attempt)
		result.Data = data
		result.Quality = quality
		result.Scale = scale
		result.Size = len(data)
		result.Width = attempt.Width
		result.Height = attempt.Height

		if len(data) <= maxBytes {
			result.WithinBudget = true
			return result, nil
		}

		if quality > opts.MinQuality {
			quality = nextQuality(quality, opts)
			continue
		}

		next := scale * opts.Step
		if next < opts.MinScale {
			return result, nil
		}
		scale = next
		current = e.codec.Resize(img, scaledDim(srcW, scale), scaledDim(srcH, scale))
	}
}

// nextQuality lowers quality by one step, always by at least one point and
// never below the floor.
func nextQuality(quality int, opts Options) int {
	q := int(float64(quality) * opts.Step)
	if q >= quality {
		q = quality - 1
	}
	if q < opts.MinQuality {
		q = opts.MinQuality
	}
	return q
}

func scaledDim(n int, scale float64) int {
	d := int(math.Round(float64(n) * scale))
	if d < 1 {
		d = 1
	}
	return d
}
