package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/eventshot/pkg/eventshot"
	"github.com/user/eventshot/pkg/pipeline"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x ^ y) & 0xff), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, "in.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

// configApp runs buildConfig through the real flag set.
func configApp(t *testing.T, args ...string) (eventshot.Config, runOptions) {
	t.Helper()
	var cfg eventshot.Config
	var opts runOptions
	app := &cli.App{
		Name:  "eventshot",
		Flags: captureFlags(),
		Action: func(c *cli.Context) error {
			var err error
			cfg, opts, err = buildConfig(c)
			return err
		},
	}
	if err := app.Run(append([]string{"eventshot"}, args...)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return cfg, opts
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg, opts := configApp(t)
	def := eventshot.NewConfigBuilder().Build()

	if cfg.URL != def.URL || cfg.OutputPath != def.OutputPath {
		t.Errorf("expected preset url/output, got %q %q", cfg.URL, cfg.OutputPath)
	}
	if cfg.MaxBytes != 100000 {
		t.Errorf("expected budget 100000, got %d", cfg.MaxBytes)
	}
	if opts.logLevel != "info" || opts.debug || opts.quiet {
		t.Errorf("unexpected run options: %+v", opts)
	}
}

func TestBuildConfig_Flags(t *testing.T) {
	cfg, opts := configApp(t,
		"--url", "https://example.com",
		"--preset", "generic",
		"--engine", "playwright",
		"--no-headless",
		"-H", "Accept-Language: nb",
		"--viewport-width", "1024",
		"--idle-timeout", "5s",
		"--no-cookie-dismiss",
		"--scroll-steps", "4",
		"--max-cards", "3",
		"--fallback", "0,10,100,110",
		"--max-bytes", "50000",
		"--min-quality", "20",
		"--debug",
		"--log-level", "debug",
	)

	if cfg.URL != "https://example.com" {
		t.Errorf("expected url override, got %q", cfg.URL)
	}
	if cfg.CardSelector != "article" {
		t.Errorf("expected generic selector, got %q", cfg.CardSelector)
	}
	if cfg.Engine != eventshot.EnginePlaywright || cfg.Headless {
		t.Errorf("unexpected browser settings: %q headless=%v", cfg.Engine, cfg.Headless)
	}
	if cfg.Headers["Accept-Language"] != "nb" {
		t.Errorf("expected header, got %v", cfg.Headers)
	}
	if cfg.ViewportWidth != 1024 || cfg.ViewportHeight != 900 {
		t.Errorf("expected 1024x900, got %dx%d", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	if cfg.IdleTimeout != 5*time.Second || cfg.DismissCookies {
		t.Errorf("unexpected capture settings: %v %v", cfg.IdleTimeout, cfg.DismissCookies)
	}
	if cfg.ScrollSteps != 4 || cfg.MaxCards != 3 {
		t.Errorf("unexpected scroll/cards: %d %d", cfg.ScrollSteps, cfg.MaxCards)
	}
	want := pipeline.Region{Left: 0, Top: 10, Right: 100, Bottom: 110}
	if cfg.Fallback == nil || *cfg.Fallback != want {
		t.Errorf("expected fallback %v, got %v", want, cfg.Fallback)
	}
	if cfg.MaxBytes != 50000 || cfg.InitialQuality != 70 || cfg.MinQuality != 20 {
		t.Errorf("unexpected compression: %d %d %d", cfg.MaxBytes, cfg.InitialQuality, cfg.MinQuality)
	}
	if !opts.debug || opts.logLevel != "debug" {
		t.Errorf("unexpected run options: %+v", opts)
	}
}

func TestBuildConfig_EnvAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eventshot.yaml")
	content := "output: from-file.jpg\ncompression:\n  max_bytes: 70000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVENTSHOT_MAX_BYTES", "60000")

	cfg, _ := configApp(t, "--config", path)

	if cfg.OutputPath != "from-file.jpg" {
		t.Errorf("expected output from file, got %q", cfg.OutputPath)
	}
	// Environment is a flag source, so it overrides the file.
	if cfg.MaxBytes != 60000 {
		t.Errorf("expected budget from env, got %d", cfg.MaxBytes)
	}
}

func TestBuildConfig_FallbackNone(t *testing.T) {
	cfg, _ := configApp(t, "--fallback", "none")
	if cfg.Fallback != nil {
		t.Errorf("expected no fallback, got %v", cfg.Fallback)
	}
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]string
		wantErr bool
	}{
		{"single", []string{"Accept-Language: nb-NO"}, map[string]string{"Accept-Language": "nb-NO"}, false},
		{"value with colon", []string{"Referer: https://a.b/c"}, map[string]string{"Referer": "https://a.b/c"}, false},
		{"missing colon", []string{"broken"}, nil, true},
		{"empty name", []string{": x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeaders(tt.values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestNewBrowser(t *testing.T) {
	for _, engine := range []eventshot.Engine{eventshot.EngineChromedp, eventshot.EnginePlaywright} {
		if b, err := newBrowser(engine); err != nil || b == nil {
			t.Errorf("newBrowser(%q) = %v, %v", engine, b, err)
		}
	}
	if _, err := newBrowser("firefox"); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestCompressCommand(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, 600, 400)
	out := filepath.Join(dir, "out", "small.jpg")
	summary := filepath.Join(dir, "summary.md")

	err := newApp().Run([]string{"eventshot", "compress",
		"--output", out,
		"--region", "100,50,500,350",
		"--max-bytes", "20000",
		"--summary", summary,
		"--quiet",
		in,
	})
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if len(data) > 20000 {
		t.Errorf("output is %d bytes, budget 20000", len(data))
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() > 400 || b.Dy() > 300 {
		t.Errorf("expected at most 400x300, got %v", b)
	}

	md, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if !strings.Contains(string(md), "100,50,500,350") {
		t.Errorf("summary does not mention the region:\n%s", md)
	}
}

func TestCompressCommand_SavedLine(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, 200, 100)
	out := filepath.Join(dir, "out.jpg")

	tests := []struct {
		name     string
		flags    []string
		wantLine bool
	}{
		{"log level error", []string{"--log-level", "error"}, true},
		{"quiet", []string{"--quiet"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := newApp()
			app.Writer = &buf

			args := append([]string{"eventshot", "compress", "--output", out}, tt.flags...)
			if err := app.Run(append(args, in)); err != nil {
				t.Fatalf("compress failed: %v", err)
			}

			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not written: %v", err)
			}
			want := fmt.Sprintf("Saved %s (%.1f KB)\n", out, float64(info.Size())/1024)
			if got := buf.String(); (got == want) != tt.wantLine {
				t.Errorf("output %q, want line %v (%q)", got, tt.wantLine, want)
			}
		})
	}
}

func TestCompressCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, 50, 50)

	tests := []struct {
		name string
		args []string
	}{
		{"no image", []string{"eventshot", "compress", "--quiet"}},
		{"missing image", []string{"eventshot", "compress", "--quiet", filepath.Join(dir, "nope.png")}},
		{"bad region", []string{"eventshot", "compress", "--quiet", "--region", "1,2,3", in}},
		{"region outside", []string{"eventshot", "compress", "--quiet", "--output", filepath.Join(dir, "x.jpg"), "--region", "100,100,200,200", in}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := newApp().Run(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	if err := app.Run([]string{"eventshot", "version"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(buf.String(), version) {
		t.Errorf("unexpected version output: %q", buf.String())
	}
}
