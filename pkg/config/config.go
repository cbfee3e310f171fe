// Package config provides configuration file loading.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/eventshot/pkg/eventshot"
	"github.com/user/eventshot/pkg/pipeline"
)

// File is the YAML configuration file. Unset fields keep the preset value;
// command line flags override file values.
type File struct {
	Preset string `yaml:"preset"`

	// Input/Output
	URL    *string `yaml:"url"`
	Output *string `yaml:"output"`

	// Browser
	Engine            *string           `yaml:"engine"`
	Headless          *bool             `yaml:"headless"`
	ChromePath        *string           `yaml:"chrome_path"`
	AutoInstall       *bool             `yaml:"auto_install"`
	UserAgent         *string           `yaml:"user_agent"`
	Headers           map[string]string `yaml:"headers"`
	IgnoreHTTPSErrors *bool             `yaml:"ignore_https_errors"`
	ProxyServer       *string           `yaml:"proxy_server"`

	// Capture
	Viewport    *ViewportConfig `yaml:"viewport"`
	FullPage    *bool           `yaml:"full_page"`
	IdleTimeout *time.Duration  `yaml:"idle_timeout"`
	SettleDelay *time.Duration  `yaml:"settle_delay"`
	Cookies     *CookieConfig   `yaml:"cookies"`
	Scroll      *ScrollConfig   `yaml:"scroll"`

	// Region
	CardSelector *string          `yaml:"card_selector"`
	MaxCards     *int             `yaml:"max_cards"`
	Padding      *int             `yaml:"padding"`
	FullWidth    *bool            `yaml:"full_width"`
	Fallback     *pipeline.Region `yaml:"fallback"`
	RequireCards *bool            `yaml:"require_cards"`

	// Compression
	Compression *CompressionConfig `yaml:"compression"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
	LogLevel string `yaml:"log_level"`
	Summary  string `yaml:"summary"`
}

// ViewportConfig represents the browser viewport size.
type ViewportConfig struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

// CookieConfig represents cookie banner handling.
type CookieConfig struct {
	Dismiss   *bool    `yaml:"dismiss"`
	Selectors []string `yaml:"selectors"`
	Labels    []string `yaml:"labels"`
}

// ScrollConfig represents lazy-load scrolling.
type ScrollConfig struct {
	Steps  *int           `yaml:"steps"`
	StepPx *int           `yaml:"step_px"`
	Delay  *time.Duration `yaml:"delay"`
}

// CompressionConfig represents the size budget search.
type CompressionConfig struct {
	MaxBytes       *int     `yaml:"max_bytes"`
	InitialQuality *int     `yaml:"initial_quality"`
	MinQuality     *int     `yaml:"min_quality"`
	MinScale       *float64 `yaml:"min_scale"`
	Step           *float64 `yaml:"step"`
}

// Defaults returns an empty File, which leaves every preset value in place.
func Defaults() File {
	return File{
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file. Unknown keys are errors.
func LoadFromFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(data)
}

// Parse decodes YAML configuration.
func Parse(data []byte) (File, error) {
	cfg := Defaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Builder returns a ConfigBuilder for the file's preset with the file's
// values applied.
func (f File) Builder() (*eventshot.ConfigBuilder, error) {
	b, err := eventshot.NewPresetConfigBuilder(f.Preset)
	if err != nil {
		return nil, err
	}
	f.Apply(b)
	return b, nil
}

// Apply sets every value present in the file on b.
func (f File) Apply(b *eventshot.ConfigBuilder) {
	if f.URL != nil {
		b.WithURL(*f.URL)
	}
	if f.Output != nil {
		b.WithOutputPath(*f.Output)
	}

	if f.Engine != nil {
		b.WithEngine(eventshot.Engine(*f.Engine))
	}
	if f.Headless != nil {
		b.WithHeadless(*f.Headless)
	}
	if f.ChromePath != nil {
		b.WithChromePath(*f.ChromePath)
	}
	if f.AutoInstall != nil {
		b.WithAutoInstall(*f.AutoInstall)
	}
	if f.UserAgent != nil {
		b.WithUserAgent(*f.UserAgent)
	}
	if len(f.Headers) > 0 {
		b.WithHeaders(f.Headers)
	}
	if f.IgnoreHTTPSErrors != nil {
		b.WithIgnoreHTTPSErrors(*f.IgnoreHTTPSErrors)
	}
	if f.ProxyServer != nil {
		b.WithProxyServer(*f.ProxyServer)
	}

	if v := f.Viewport; v != nil && (v.Width != nil || v.Height != nil) {
		current := b.Build()
		width, height := current.ViewportWidth, current.ViewportHeight
		if v.Width != nil {
			width = *v.Width
		}
		if v.Height != nil {
			height = *v.Height
		}
		b.WithViewport(width, height)
	}
	if f.FullPage != nil {
		b.WithFullPage(*f.FullPage)
	}
	if f.IdleTimeout != nil {
		b.WithIdleTimeout(*f.IdleTimeout)
	}
	if f.SettleDelay != nil {
		b.WithSettleDelay(*f.SettleDelay)
	}
	if c := f.Cookies; c != nil {
		if c.Dismiss != nil {
			b.WithCookieDismissal(*c.Dismiss)
		}
		if c.Selectors != nil {
			b.WithCookieSelectors(c.Selectors)
		}
		if c.Labels != nil {
			b.WithCookieLabels(c.Labels)
		}
	}
	if s := f.Scroll; s != nil {
		if s.Steps != nil || s.StepPx != nil {
			current := b.Build()
			steps, stepPx := current.ScrollSteps, current.ScrollStepPx
			if s.Steps != nil {
				steps = *s.Steps
			}
			if s.StepPx != nil {
				stepPx = *s.StepPx
			}
			b.WithScroll(steps, stepPx)
		}
		if s.Delay != nil {
			b.WithScrollDelay(*s.Delay)
		}
	}

	if f.CardSelector != nil {
		b.WithCardSelector(*f.CardSelector)
	}
	if f.MaxCards != nil {
		b.WithMaxCards(*f.MaxCards)
	}
	if f.Padding != nil {
		b.WithPadding(*f.Padding)
	}
	if f.FullWidth != nil {
		b.WithFullWidth(*f.FullWidth)
	}
	if f.Fallback != nil {
		fallback := *f.Fallback
		b.WithFallback(&fallback)
	}
	if f.RequireCards != nil {
		b.WithRequireCards(*f.RequireCards)
	}

	if c := f.Compression; c != nil {
		if c.MaxBytes != nil {
			b.WithMaxBytes(*c.MaxBytes)
		}
		if c.InitialQuality != nil || c.MinQuality != nil {
			current := b.Build()
			initial, minimum := current.InitialQuality, current.MinQuality
			if c.InitialQuality != nil {
				initial = *c.InitialQuality
			}
			if c.MinQuality != nil {
				minimum = *c.MinQuality
			}
			b.WithQuality(initial, minimum)
		}
		if c.MinScale != nil {
			b.WithMinScale(*c.MinScale)
		}
		if c.Step != nil {
			b.WithStep(*c.Step)
		}
	}
}
