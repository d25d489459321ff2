package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/atikulmunna/logreader/internal/model"
)

// Renderer writes an analysis report to an output stream.
type Renderer interface {
	Render(source string, res model.AnalysisResult) error
}

// Filter limits which issues and recommendations are shown. An empty
// filter shows everything.
type Filter map[model.Severity]bool

// ParseFilter builds a filter from a comma-separated severity list.
func ParseFilter(s string) (Filter, error) {
	f := make(Filter)
	if strings.TrimSpace(s) == "" {
		return f, nil
	}
	for _, part := range strings.Split(s, ",") {
		sev := model.Severity(strings.ToLower(strings.TrimSpace(part)))
		if !sev.Valid() {
			return nil, fmt.Errorf("unknown severity %q (want high, medium or low)", part)
		}
		f[sev] = true
	}
	return f, nil
}

func (f Filter) allows(s model.Severity) bool {
	return len(f) == 0 || f[s]
}

// Apply returns a copy of res without the filtered-out issues and
// recommendations. The summary is left untouched.
func (f Filter) Apply(res model.AnalysisResult) model.AnalysisResult {
	if len(f) == 0 {
		return res
	}
	issues := make([]model.Issue, 0, len(res.Issues))
	for _, issue := range res.Issues {
		if f.allows(issue.Severity) {
			issues = append(issues, issue)
		}
	}
	recs := make([]model.Recommendation, 0, len(res.Recommendations))
	for _, rec := range res.Recommendations {
		if f.allows(rec.Priority) {
			recs = append(recs, rec)
		}
	}
	res.Issues = issues
	res.Recommendations = recs
	return res
}

// New returns the renderer for format ("text" or "json").
func New(format string, w io.Writer, f Filter) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextRenderer(w, f), nil
	case "json":
		return NewJSONRenderer(w, f), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal report)
// ---------------------------------------------------------------------------

const maxSampleWidth = 120

var (
	styleTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true) // cyan
	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	styleLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))            // green
	styleMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))           // yellow
	styleHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleFaint  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

// TextRenderer prints a human-readable report with severity colors.
type TextRenderer struct {
	w      io.Writer
	filter Filter
}

// NewTextRenderer returns a Renderer that writes colorized text to w.
func NewTextRenderer(w io.Writer, f Filter) *TextRenderer {
	return &TextRenderer{w: w, filter: f}
}

func (r *TextRenderer) Render(source string, res model.AnalysisResult) error {
	res = r.filter.Apply(res)
	s := res.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styleTitle.Render("── "+source+" ──"))
	fmt.Fprintf(&b, "Severity: %s  Lines: %s  Errors: %s  Warnings: %s  Info: %s\n",
		styleSeverity(s.OverallSeverity),
		humanize.Comma(int64(s.TotalLines)),
		humanize.Comma(int64(s.ErrorCount)),
		humanize.Comma(int64(s.WarningCount)),
		humanize.Comma(int64(s.InfoCount)),
	)
	if s.TimeRange != nil {
		fmt.Fprintf(&b, "Time range: %s → %s (%s)\n",
			s.TimeRange.Start.Format(time.DateTime),
			s.TimeRange.End.Format(time.DateTime),
			describeSpan(*s.TimeRange),
		)
	}

	if len(res.Issues) > 0 {
		fmt.Fprintf(&b, "\n%s\n", styleHeader.Render("Issues"))
		for _, issue := range res.Issues {
			fmt.Fprintf(&b, "  %s %s ×%s  %s\n",
				styleSeverity(issue.Severity), issue.Type, humanize.Comma(int64(issue.Count)), issue.Description)
			for _, l := range issue.Samples {
				fmt.Fprintf(&b, "      %s %s\n", styleFaint.Render(fmt.Sprintf("L%d:", l.Number)), truncate(l.Content, maxSampleWidth))
			}
		}
	} else {
		fmt.Fprintf(&b, "\nNo issues detected.\n")
	}

	if len(res.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", styleHeader.Render("Recommendations"))
		for _, rec := range res.Recommendations {
			fmt.Fprintf(&b, "  %s %s\n", styleSeverity(rec.Priority), rec.Title)
			if rec.Description != "" {
				fmt.Fprintf(&b, "      %s\n", styleFaint.Render(rec.Description))
			}
		}
	}

	_, err := fmt.Fprintln(r.w, b.String())
	return err
}

func styleSeverity(s model.Severity) string {
	tag := fmt.Sprintf("[%s]", strings.ToUpper(string(s)))
	switch s {
	case model.SeverityHigh:
		return styleHigh.Render(tag)
	case model.SeverityMedium:
		return styleMedium.Render(tag)
	default:
		return styleLow.Render(tag)
	}
}

// describeSpan renders the span between the first and last timestamps.
// Logs are not sorted, so the end can precede the start.
func describeSpan(tr model.TimeRange) string {
	d := tr.Duration()
	if d == 0 {
		return "instant"
	}
	span := strings.TrimSpace(humanize.RelTime(tr.Start, tr.End, "", ""))
	if d < 0 {
		return span + ", out of order"
	}
	return span
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// Report is the JSON shape of one rendered analysis.
type Report struct {
	Source   string               `json:"source"`
	Analysis model.AnalysisResult `json:"analysis"`
}

// JSONRenderer prints each report as a single JSON object per line.
type JSONRenderer struct {
	enc    *json.Encoder
	filter Filter
}

// NewJSONRenderer returns a Renderer that writes JSON lines to w.
func NewJSONRenderer(w io.Writer, f Filter) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w), filter: f}
}

func (r *JSONRenderer) Render(source string, res model.AnalysisResult) error {
	return r.enc.Encode(Report{Source: source, Analysis: r.filter.Apply(res)})
}
