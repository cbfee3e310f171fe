package summarizer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion adds the tool version to the report footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Capture Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Page"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Page Title"), escape(s.Page.Title))
	fmt.Fprintf(&b, "| %s | %s |\n", t("URL"), escape(s.Page.URL))
	if s.Capture.ViewportWidth > 0 {
		fmt.Fprintf(&b, "| %s | %dx%d |\n", t("Viewport"), s.Capture.ViewportWidth, s.Capture.ViewportHeight)
	}
	fmt.Fprintf(&b, "| %s | %s |\n", t("Cookie Banner Dismissed"), f.yesNo(s.Capture.CookieDismissed))
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Network Idle Timeout"), f.yesNo(s.Capture.IdleTimedOut))

	fmt.Fprintf(&b, "## %s\n\n", t("Region"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Source"), t(s.Region.Source))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Cards"), s.Region.CardCount)
	fmt.Fprintf(&b, "| %s | %d,%d,%d,%d |\n", t("Crop (left,top,right,bottom)"),
		s.Region.Left, s.Region.Top, s.Region.Right, s.Region.Bottom)
	fmt.Fprintf(&b, "| %s | %dx%d |\n\n", t("Screenshot Size"), s.Region.SourceWidth, s.Region.SourceHeight)

	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("File"), escape(s.Output.Path))
	fmt.Fprintf(&b, "| %s | %s (%s %s) |\n", t("File Size"),
		humanize.Bytes(uint64(s.Output.FileSize)), humanize.Comma(s.Output.FileSize), t("bytes"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Budget"), humanize.Bytes(uint64(s.Output.MaxBytes)))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Within Budget"), f.yesNo(s.Output.WithinBudget))
	fmt.Fprintf(&b, "| %s | %d |\n", t("JPEG Quality"), s.Output.Quality)
	fmt.Fprintf(&b, "| %s | %.3f |\n", t("Scale"), s.Output.Scale)
	fmt.Fprintf(&b, "| %s | %dx%d |\n\n", t("Dimensions"), s.Output.Width, s.Output.Height)

	if len(s.Attempts) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Encode Attempts"))
		fmt.Fprintf(&b, "| # | %s | %s | %s | %s |\n|---|---|---|---|---|\n",
			t("Quality"), t("Scale"), t("Dimensions"), t("Size"))
		for i, a := range s.Attempts {
			fmt.Fprintf(&b, "| %d | %d | %.3f | %dx%d | %s |\n",
				i+1, a.Quality, a.Scale, a.Width, a.Height, humanize.Bytes(uint64(a.Size)))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		footer += fmt.Sprintf(" (eventshot %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

// escape keeps table cells intact.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Ensure MarkdownFormatter implements Formatter
var _ Formatter = (*MarkdownFormatter)(nil)
