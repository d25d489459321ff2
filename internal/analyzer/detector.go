package analyzer

import (
	"strings"

	"github.com/atikulmunna/logreader/internal/model"
)

// Detection is a rule that matched at least one line, with its issue record.
type Detection struct {
	Rule  Rule
	Issue model.Issue
}

// Detect runs every rule over the lines and returns the rules that fired,
// in rule order. Sample line numbers come from the line's position, so
// duplicate lines keep their own numbers.
func Detect(lines []model.Line, rules []Rule) []Detection {
	counts := make([]int, len(rules))
	samples := make([][]model.Line, len(rules))

	for _, l := range lines {
		lower := strings.ToLower(l.Content)
		for i, r := range rules {
			if !r.Match(lower) {
				continue
			}
			counts[i]++
			if len(samples[i]) < MaxSamples {
				samples[i] = append(samples[i], l)
			}
		}
	}

	var out []Detection
	for i, r := range rules {
		if counts[i] == 0 {
			continue
		}
		out = append(out, Detection{
			Rule: r,
			Issue: model.Issue{
				Type:        r.Name,
				Count:       counts[i],
				Description: r.Description,
				Severity:    r.Severity,
				Samples:     samples[i],
			},
		})
	}
	return out
}
