package summarizer

import (
	"strings"
	"testing"
	"time"

	"github.com/user/eventshot/pkg/budget"
)

func sampleSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Page: PageInfo{
			Title: "Program | Metropol",
			URL:   "https://metropol.vartoslo.no/events",
		},
		Capture: CaptureInfo{
			ViewportWidth:  1400,
			ViewportHeight: 900,
			IdleTimedOut:   true,
		},
		Region: RegionInfo{
			Left: 0, Top: 150, Right: 1400, Bottom: 750,
			Source:       "fallback",
			SourceWidth:  1400,
			SourceHeight: 900,
		},
		Output: OutputInfo{
			Path:         "events.jpg",
			FileSize:     98_304,
			MaxBytes:     100_000,
			WithinBudget: true,
			Quality:      63,
			Scale:        1,
			Width:        1400,
			Height:       600,
		},
		Attempts: []budget.Attempt{
			{Quality: 70, Scale: 1, Width: 1400, Height: 600, Size: 120_000},
			{Quality: 63, Scale: 1, Width: 1400, Height: 600, Size: 98_304},
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(sampleSummary())

	checks := []string{
		"# Capture Summary",
		`Program \| Metropol`,
		"https://metropol.vartoslo.no/events",
		"1400x900",
		"| Network Idle Timeout | Yes |",
		"| Source | fallback |",
		"0,150,1400,750",
		"98 kB (98,304 bytes)",
		"| Budget | 100 kB |",
		"| JPEG Quality | 63 |",
		"| 1 | 70 | 1.000 | 1400x600 | 120 kB |",
		"| 2 | 63 | 1.000 | 1400x600 | 98 kB |",
		"2024-01-15 10:30:00 UTC",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
}

func TestMarkdownFormatter_Format_NoAttempts(t *testing.T) {
	s := sampleSummary()
	s.Attempts = nil

	result := NewMarkdownFormatter().Format(s)

	if strings.Contains(result, "Encode Attempts") {
		t.Error("expected no attempts section")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Capture Summary": "Oppsummering",
			"Page Title":      "Sidetittel",
			"Yes":             "Ja",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(sampleSummary())

	for _, want := range []string{"# Oppsummering", "| Sidetittel |", "| Ja |"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(sampleSummary())

	if !strings.Contains(result, "(eventshot v1.2.0)") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatFunc(t *testing.T) {
	var f Formatter = FormatFunc(func(s *Summary) string { return s.Page.Title })

	if got := f.Format(sampleSummary()); got != "Program | Metropol" {
		t.Errorf("unexpected output %q", got)
	}
}
