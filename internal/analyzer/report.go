package analyzer

import "github.com/atikulmunna/logreader/internal/model"

const (
	IssueError   = "error"
	IssueWarning = "warning"
)

// severityThreshold is the error count above which a document is rated high.
const severityThreshold = 10

var criticalErrors = model.Recommendation{
	Title:       "Address critical errors",
	Description: "Investigate the logged errors and exceptions, starting with the earliest occurrence",
	Priority:    model.SeverityHigh,
}

// BuildIssues orders the aggregate error and warning records ahead of the
// rule detections. Records with a zero count are never emitted.
func BuildIssues(counts model.SeverityCounts, detections []Detection) []model.Issue {
	issues := make([]model.Issue, 0, len(detections)+2)
	if counts.Error > 0 {
		issues = append(issues, model.Issue{
			Type:        IssueError,
			Count:       counts.Error,
			Description: "Critical errors detected in log",
			Severity:    model.SeverityHigh,
		})
	}
	if counts.Warning > 0 {
		issues = append(issues, model.Issue{
			Type:        IssueWarning,
			Count:       counts.Warning,
			Description: "Warnings found that may indicate potential problems",
			Severity:    model.SeverityMedium,
		})
	}
	for _, d := range detections {
		issues = append(issues, d.Issue)
	}
	return issues
}

// BuildRecommendations returns at most one recommendation per category, in
// declaration order.
func BuildRecommendations(counts model.SeverityCounts, detections []Detection) []model.Recommendation {
	recs := make([]model.Recommendation, 0, len(detections)+1)
	if counts.Error > 0 {
		recs = append(recs, criticalErrors)
	}
	for _, d := range detections {
		if d.Rule.Recommendation != nil {
			recs = append(recs, *d.Rule.Recommendation)
		}
	}
	return recs
}

// BuildSummary computes document-wide statistics.
func BuildSummary(totalLines int, counts model.SeverityCounts, timestamps []model.TimestampSample) model.Summary {
	return model.Summary{
		TotalLines:      totalLines,
		ErrorCount:      counts.Error,
		WarningCount:    counts.Warning,
		InfoCount:       counts.Info,
		TimeRange:       TimeRangeOf(timestamps),
		OverallSeverity: OverallSeverity(counts.Error),
	}
}

// OverallSeverity rates a whole document from its error count.
func OverallSeverity(errorCount int) model.Severity {
	switch {
	case errorCount > severityThreshold:
		return model.SeverityHigh
	case errorCount > 0:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
