package analyzer

import (
	"strings"

	"github.com/atikulmunna/logreader/internal/model"
)

// MaxSamples caps the sample lines kept per issue.
const MaxSamples = 5

// Rule is a named failure signature. A line matches when its lowercase
// form contains any of the keywords.
type Rule struct {
	Name           string                `yaml:"name"`
	Keywords       []string              `yaml:"keywords"`
	Severity       model.Severity        `yaml:"severity"`
	Description    string                `yaml:"description"`
	Recommendation *model.Recommendation `yaml:"recommendation,omitempty"`
}

// Match reports whether the already-lowercased line triggers the rule.
func (r Rule) Match(lower string) bool {
	return containsAny(lower, r.Keywords)
}

// normalize lowercases keywords and drops empty ones.
func (r Rule) normalize() Rule {
	kws := make([]string, 0, len(r.Keywords))
	for _, k := range r.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kws = append(kws, k)
		}
	}
	r.Keywords = kws
	return r
}

// DefaultRules returns the built-in detection rules in report order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "null-pointer",
			Keywords:    []string{"null pointer", "nullpointerexception"},
			Severity:    model.SeverityHigh,
			Description: "Null pointer exceptions detected",
			Recommendation: &model.Recommendation{
				Title:       "Fix null pointer exceptions",
				Description: "Add null checks before dereferencing objects and validate inputs at service boundaries",
				Priority:    model.SeverityHigh,
			},
		},
		{
			Name:        "timeout",
			Keywords:    []string{"timeout", "timed out"},
			Severity:    model.SeverityMedium,
			Description: "Timeout conditions detected",
			Recommendation: &model.Recommendation{
				Title:       "Optimize timeout operations",
				Description: "Review slow dependencies, tune timeout values and add retries with backoff where appropriate",
				Priority:    model.SeverityMedium,
			},
		},
	}
}
