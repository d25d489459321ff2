package analyzer

import (
	"strings"

	"github.com/atikulmunna/logreader/internal/model"
)

var (
	errorKeywords   = []string{"error", "exception", "fail"}
	warningKeywords = []string{"warning", "warn"}
	infoKeywords    = []string{"info", "information"}
)

// Classify counts lines per severity bucket. Buckets are independent: a
// line mentioning both "error" and "warning" is counted in both.
func Classify(lines []model.Line) model.SeverityCounts {
	var c model.SeverityCounts
	for _, l := range lines {
		lower := strings.ToLower(l.Content)
		if containsAny(lower, errorKeywords) {
			c.Error++
		}
		if containsAny(lower, warningKeywords) {
			c.Warning++
		}
		if containsAny(lower, infoKeywords) {
			c.Info++
		}
	}
	return c
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
