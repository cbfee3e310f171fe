// Package summarizer provides summary generation for capture results.
package summarizer

import (
	"time"

	"github.com/user/eventshot/pkg/budget"
)

// Summary contains all data collected during a capture run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Page information
	Page PageInfo

	// Capture conditions
	Capture CaptureInfo

	// Crop region
	Region RegionInfo

	// JPEG output details
	Output OutputInfo

	// Every encode pass of the budget search, in order
	Attempts []budget.Attempt
}

// PageInfo contains information about the captured page.
type PageInfo struct {
	Title string
	URL   string
}

// CaptureInfo describes how the page was captured.
type CaptureInfo struct {
	ViewportWidth   int
	ViewportHeight  int
	CookieDismissed bool
	IdleTimedOut    bool
}

// RegionInfo describes the crop.
type RegionInfo struct {
	Left, Top, Right, Bottom int
	Source                   string // cards, fallback, full or explicit
	CardCount                int
	SourceWidth              int
	SourceHeight             int
}

// OutputInfo contains information about the written JPEG.
type OutputInfo struct {
	Path         string
	FileSize     int64
	MaxBytes     int
	WithinBudget bool
	Quality      int
	Scale        float64
	Width        int
	Height       int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithPage sets page information.
func (b *Builder) WithPage(title, url string) *Builder {
	b.summary.Page = PageInfo{
		Title: title,
		URL:   url,
	}
	return b
}

// WithCapture sets capture conditions.
func (b *Builder) WithCapture(capture CaptureInfo) *Builder {
	b.summary.Capture = capture
	return b
}

// WithRegion sets the crop region.
func (b *Builder) WithRegion(region RegionInfo) *Builder {
	b.summary.Region = region
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithAttempts sets the encode attempts.
func (b *Builder) WithAttempts(attempts []budget.Attempt) *Builder {
	b.summary.Attempts = attempts
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
