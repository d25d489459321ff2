package model

import "time"

// Line is a single line of a log document.
type Line struct {
	Number  int    `json:"number"`  // 1-based position in the document
	Content string `json:"content"` // line text without the line break
}

// Document is raw log text handed to the analyzer by an ingestion source.
type Document struct {
	Source  string `json:"source"` // file path, "stdin" or an upload name
	Content string `json:"content"`
}

// LogStatus tracks a stored log through its analysis lifecycle.
type LogStatus string

const (
	StatusUploaded  LogStatus = "uploaded"
	StatusAnalyzing LogStatus = "analyzing"
	StatusAnalyzed  LogStatus = "analyzed"
	StatusFailed    LogStatus = "failed"
)

// Log is an uploaded log document kept by the store.
type Log struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploaded_at"`
	Status     LogStatus `json:"status"`
	Error      string    `json:"error,omitempty"` // set when Status is failed
}

// EventKind distinguishes analysis events.
type EventKind string

const (
	EventAnalyzed EventKind = "analyzed"
	EventFailed   EventKind = "failed"
	EventDeleted  EventKind = "deleted"
)

// Event is published when a log finishes analysis, fails analysis or is
// deleted. LogID is empty for one-off analyses that were never stored.
type Event struct {
	Kind   EventKind      `json:"kind"`
	LogID  string         `json:"log_id,omitempty"`
	Source string         `json:"source"`
	Result AnalysisResult `json:"result"`
	Error  string         `json:"error,omitempty"` // set for failed events
}
