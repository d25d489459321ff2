// Package analyzer turns raw log text into a diagnostic summary: severity
// counts, the time span covered, detected failure signatures and ranked
// recommendations.
//
// Analysis is a pure function of the input text apart from the GeneratedAt
// stamp. An Analyzer holds no mutable state and may be shared between
// goroutines.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atikulmunna/logreader/internal/model"
)

// ErrInputTooLarge is returned by Run when the content exceeds the
// configured size limit.
var ErrInputTooLarge = errors.New("input too large")

// Analyzer runs a fixed rule set over log documents.
type Analyzer struct {
	rules    []Rule
	maxBytes int64
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRules appends extra rules after the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(a *Analyzer) {
		for _, r := range rules {
			a.rules = append(a.rules, r.normalize())
		}
	}
}

// WithMaxBytes limits the size of documents accepted by Run. Zero or a
// negative value disables the limit.
func WithMaxBytes(n int64) Option {
	return func(a *Analyzer) { a.maxBytes = n }
}

// New returns an Analyzer with the built-in rules plus any options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		rules: DefaultRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAnalyzer = New()

// Analyze runs the built-in rules over content. It never fails.
func Analyze(content string) model.AnalysisResult {
	return defaultAnalyzer.Analyze(content)
}

// Rules returns a copy of the rule table in evaluation order.
func (a *Analyzer) Rules() []Rule {
	out := make([]Rule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Analyze produces the full result for content without size checks.
func (a *Analyzer) Analyze(content string) model.AnalysisResult {
	lines := Split(content)

	counts := Classify(lines)
	timestamps := ExtractTimestamps(lines)
	detections := Detect(lines, a.rules)

	return model.AnalysisResult{
		Summary:         BuildSummary(len(lines), counts, timestamps),
		Issues:          BuildIssues(counts, detections),
		Recommendations: BuildRecommendations(counts, detections),
		GeneratedAt:     a.now(),
	}
}

// Run is Analyze with the size limit and cancellation applied. On error no
// result is returned.
func (a *Analyzer) Run(ctx context.Context, content string) (model.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("analysis failed: %w", err)
	}
	if a.maxBytes > 0 && int64(len(content)) > a.maxBytes {
		return model.AnalysisResult{}, fmt.Errorf("analysis failed: %w (%d bytes, limit %d)",
			ErrInputTooLarge, len(content), a.maxBytes)
	}
	return a.Analyze(content), nil
}
