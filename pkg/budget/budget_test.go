package budget

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"math/rand"
	"testing"
)

// fakeCodec reports sizes from a formula so the search path is predictable.
type fakeCodec struct {
	sizeFn      func(quality, width, height int) int
	resizeCalls []image.Image
}

func (c *fakeCodec) EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	b := img.Bounds()
	return make([]byte, c.sizeFn(quality, b.Dx(), b.Dy())), nil
}

func (c *fakeCodec) Resize(img image.Image, width, height int) image.Image {
	c.resizeCalls = append(c.resizeCalls, img)
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func constantSize(n int) func(int, int, int) int {
	return func(int, int, int) int { return n }
}

// busyImage builds a deterministic image with gradients, blocks and noise,
// roughly what a page screenshot full of cards looks like to the encoder.
func busyImage(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8(x * 255 / w)
			g := uint8(y * 255 / h)
			b := uint8(((x / 40) + (y / 40)) % 2 * 200)
			n := uint8(rng.Intn(64))
			img.Set(x, y, color.RGBA{R: r ^ n, G: g ^ n, B: b ^ n, A: 255})
		}
	}
	return img
}

func flatImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func TestEncode_AlreadyUnderBudget(t *testing.T) {
	result, err := Encode(flatImage(200, 100), DefaultMaxBytes, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.WithinBudget {
		t.Error("expected result within budget")
	}
	if result.Quality != DefaultInitialQuality {
		t.Errorf("expected quality %d, got %d", DefaultInitialQuality, result.Quality)
	}
	if result.Scale != 1.0 {
		t.Errorf("expected scale 1.0, got %f", result.Scale)
	}
	if len(result.Attempts) != 1 {
		t.Errorf("expected a single attempt, got %d", len(result.Attempts))
	}
	if result.Width != 200 || result.Height != 100 {
		t.Errorf("expected 200x100, got %dx%d", result.Width, result.Height)
	}
}

func TestEncode_ScreenshotSizedImage(t *testing.T) {
	img := busyImage(1400, 600)

	result, err := Encode(img, 100_000, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.WithinBudget {
		t.Fatalf("expected result within budget, last size %d", result.Size)
	}
	if result.Size > 100_000 {
		t.Errorf("expected size <= 100000, got %d", result.Size)
	}
	if len(result.Data) != result.Size {
		t.Errorf("size %d does not match data length %d", result.Size, len(result.Data))
	}
	if result.Quality < 30 || result.Quality > 70 {
		t.Errorf("expected quality in [30,70], got %d", result.Quality)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("output is not a valid JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != result.Width || decoded.Bounds().Dy() != result.Height {
		t.Errorf("decoded %dx%d, result reports %dx%d",
			decoded.Bounds().Dx(), decoded.Bounds().Dy(), result.Width, result.Height)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	img := busyImage(300, 200)

	first, err := Encode(img, 8_000, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Encode(img, 8_000, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first.Data, second.Data) {
		t.Error("expected identical output for identical input")
	}
	if first.Quality != second.Quality || first.Scale != second.Scale {
		t.Errorf("expected identical settings, got q%d/%f and q%d/%f",
			first.Quality, first.Scale, second.Quality, second.Scale)
	}
}

func TestEncode_QualityStepsBeforeScaling(t *testing.T) {
	codec := &fakeCodec{sizeFn: constantSize(1000)}
	enc := NewEncoder(codec)

	result, err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 100, 50)), 1, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantQualities := []int{70, 63, 56, 50, 45, 40, 36, 32, 30}
	if len(result.Attempts) < len(wantQualities) {
		t.Fatalf("expected at least %d attempts, got %d", len(wantQualities), len(result.Attempts))
	}
	for i, want := range wantQualities {
		a := result.Attempts[i]
		if a.Quality != want {
			t.Errorf("attempt %d: expected quality %d, got %d", i, want, a.Quality)
		}
		if a.Scale != 1.0 {
			t.Errorf("attempt %d: expected scale 1.0 while lowering quality, got %f", i, a.Scale)
		}
	}
	for i, a := range result.Attempts[len(wantQualities):] {
		if a.Quality != 30 {
			t.Errorf("scaled attempt %d: expected quality pinned at 30, got %d", i, a.Quality)
		}
	}
}

func TestEncode_UnreachableBudgetStopsAtScaleFloor(t *testing.T) {
	codec := &fakeCodec{sizeFn: constantSize(1000)}
	enc := NewEncoder(codec)

	result, err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 100, 50)), 1, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.WithinBudget {
		t.Error("expected budget miss")
	}
	if len(result.Data) == 0 {
		t.Error("expected best-effort data, got empty")
	}
	if result.Quality != 30 {
		t.Errorf("expected quality 30, got %d", result.Quality)
	}
	if result.Scale < DefaultMinScale {
		t.Errorf("scale %f dropped below floor %f", result.Scale, DefaultMinScale)
	}
	// 9 quality steps at scale 1.0, then 0.9^1 .. 0.9^15 (0.9^16 < 0.2).
	if len(result.Attempts) != 24 {
		t.Errorf("expected 24 attempts, got %d", len(result.Attempts))
	}
	if want := math.Pow(0.9, 15); math.Abs(result.Scale-want) > 1e-9 {
		t.Errorf("expected final scale %f, got %f", want, result.Scale)
	}
}

func TestEncode_RealCodecOneByteBudget(t *testing.T) {
	result, err := Encode(busyImage(120, 80), 1, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.WithinBudget {
		t.Error("a 1-byte budget cannot be met")
	}
	if result.Size == 0 {
		t.Error("expected best-effort output")
	}
	if result.Scale < DefaultMinScale {
		t.Errorf("scale %f dropped below floor", result.Scale)
	}
}

func TestEncode_ReachedByScaling(t *testing.T) {
	// 1 byte per 10 pixels, independent of quality.
	codec := &fakeCodec{sizeFn: func(_, w, h int) int { return w * h / 10 }}
	enc := NewEncoder(codec)
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))

	result, err := enc.Encode(src, 500, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.WithinBudget {
		t.Fatal("expected budget to be met by downscaling")
	}
	if result.Width != 66 || result.Height != 66 {
		t.Errorf("expected 66x66, got %dx%d", result.Width, result.Height)
	}
	if result.Size > 500 {
		t.Errorf("expected size <= 500, got %d", result.Size)
	}
	for i, img := range codec.resizeCalls {
		if img != image.Image(src) {
			t.Errorf("resize %d: expected to resample the original image", i)
		}
	}
}

func TestEncode_CustomScaleFloor(t *testing.T) {
	codec := &fakeCodec{sizeFn: constantSize(1000)}
	enc := NewEncoder(codec)
	opts := DefaultOptions()
	opts.MinScale = 0.5

	result, err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 10, 10)), 1, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 9 quality attempts, then scales 0.9 .. 0.9^6 (0.531).
	if len(result.Attempts) != 15 {
		t.Errorf("expected 15 attempts, got %d", len(result.Attempts))
	}
	for _, a := range result.Attempts {
		if a.Scale < 0.5 {
			t.Errorf("attempt scale %f below floor 0.5", a.Scale)
		}
		if a.Width < 1 || a.Height < 1 {
			t.Errorf("attempt produced empty image %dx%d", a.Width, a.Height)
		}
	}
}

func TestEncode_InitialQualityBelowDefaultFloor(t *testing.T) {
	codec := &fakeCodec{sizeFn: constantSize(1000)}
	enc := NewEncoder(codec)

	result, err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 10, 10)), 1, Options{InitialQuality: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Attempts[0].Quality != 20 {
		t.Errorf("expected first quality 20, got %d", result.Attempts[0].Quality)
	}
	if len(result.Attempts) < 2 || result.Attempts[1].Scale == 1.0 {
		t.Error("expected scaling to start immediately when quality is already at the floor")
	}
}

func TestEncode_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		img      image.Image
		maxBytes int
		opts     Options
		wantErr  error
	}{
		{"nil image", nil, 1000, DefaultOptions(), ErrEmptyImage},
		{"empty image", image.NewRGBA(image.Rect(0, 0, 0, 10)), 1000, DefaultOptions(), ErrEmptyImage},
		{"zero budget", flatImage(4, 4), 0, DefaultOptions(), ErrInvalidBudget},
		{"negative budget", flatImage(4, 4), -5, DefaultOptions(), ErrInvalidBudget},
		{"quality above 100", flatImage(4, 4), 1000, Options{InitialQuality: 120}, ErrInvalidOptions},
		{"min above initial", flatImage(4, 4), 1000, Options{InitialQuality: 50, MinQuality: 60}, ErrInvalidOptions},
		{"scale above one", flatImage(4, 4), 1000, Options{MinScale: 1.5}, ErrInvalidOptions},
		{"step of one", flatImage(4, 4), 1000, Options{Step: 1}, ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.img, tt.maxBytes, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNextQuality(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		in, want int
	}{
		{70, 63},
		{63, 56},
		{32, 30}, // int(28.8) floored to min
		{31, 30},
	}
	for _, tt := range tests {
		if got := nextQuality(tt.in, opts); got != tt.want {
			t.Errorf("nextQuality(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	low := Options{MinQuality: 1, Step: 0.99}
	if got := nextQuality(5, low); got != 4 {
		t.Errorf("expected quality to drop by at least one point, got %d", got)
	}
}
