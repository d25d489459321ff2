package model

import "time"

// Severity ranks issues, recommendations and whole documents.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities, higher is worse. Unknown values rank lowest.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// SeverityCounts holds per-bucket line counts. A line may count in more
// than one bucket.
type SeverityCounts struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// TimestampSample is a timestamp substring found verbatim in a line.
type TimestampSample struct {
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// TimeRange spans the first and last timestamps found in a document.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start. It is negative for out-of-order logs.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Issue is a counted finding surfaced to the report.
type Issue struct {
	Type        string   `json:"type"`
	Count       int      `json:"count"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Samples     []Line   `json:"sample_lines,omitempty"`
}

// Recommendation is advice attached to a detected issue category.
type Recommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Severity `json:"priority"`
}

// Summary holds aggregate statistics for one document.
type Summary struct {
	TotalLines      int        `json:"total_lines"`
	ErrorCount      int        `json:"error_count"`
	WarningCount    int        `json:"warning_count"`
	InfoCount       int        `json:"info_count"`
	TimeRange       *TimeRange `json:"time_range,omitempty"`
	OverallSeverity Severity   `json:"overall_severity"`
}

// AnalysisResult is the complete output of one analysis call.
type AnalysisResult struct {
	Summary         Summary          `json:"summary"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
