package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/atikulmunna/logreader/internal/analyzer"
	"github.com/atikulmunna/logreader/internal/model"
)

const sample = "2024-01-01T10:00:00 ERROR NullPointerException occurred\n2024-01-01T10:05:00 request timed out"

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewJSONRenderer(&buf, nil)

	if err := renderer.Render("/var/log/app.log", analyzer.Analyze(sample)); err != nil {
		t.Fatal(err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}
	if got.Source != "/var/log/app.log" {
		t.Errorf("expected source '/var/log/app.log', got %q", got.Source)
	}
	if got.Analysis.Summary.ErrorCount != 1 {
		t.Errorf("expected 1 error, got %d", got.Analysis.Summary.ErrorCount)
	}
	if len(got.Analysis.Issues) != 3 {
		t.Errorf("expected 3 issues, got %+v", got.Analysis.Issues)
	}
	if !strings.Contains(buf.String(), `"overall_severity":"medium"`) {
		t.Errorf("expected snake_case fields, got %s", buf.String())
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewTextRenderer(&buf, nil)

	if err := renderer.Render("app.log", analyzer.Analyze(sample)); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"app.log",
		"Errors: 1",
		"2024-01-01 10:00:00",
		"5 minutes",
		"null-pointer",
		"L1:",
		"timeout",
		"Fix null pointer exceptions",
		"Optimize timeout operations",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTextRendererNoIssues(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextRenderer(&buf, nil).Render("empty", analyzer.Analyze("")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No issues detected.") {
		t.Errorf("expected no-issues note, got:\n%s", buf.String())
	}
}

func TestFilter(t *testing.T) {
	f, err := ParseFilter("high")
	if err != nil {
		t.Fatal(err)
	}
	res := f.Apply(analyzer.Analyze(sample))
	for _, issue := range res.Issues {
		if issue.Severity != model.SeverityHigh {
			t.Errorf("unexpected %s issue %s", issue.Severity, issue.Type)
		}
	}
	if len(res.Issues) != 2 {
		t.Errorf("expected error and null-pointer issues, got %+v", res.Issues)
	}
	if len(res.Recommendations) != 2 {
		t.Errorf("expected 2 high recommendations, got %+v", res.Recommendations)
	}

	if _, err := ParseFilter("high,urgent"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestDescribeSpan(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		tr   model.TimeRange
		want string
	}{
		{model.TimeRange{Start: t0, End: t0}, "instant"},
		{model.TimeRange{Start: t0, End: t0.Add(2 * time.Hour)}, "2 hours"},
		{model.TimeRange{Start: t0.Add(2 * time.Hour), End: t0}, "2 hours, out of order"},
	}
	for _, tt := range tests {
		if got := describeSpan(tt.tr); got != tt.want {
			t.Errorf("describeSpan(%v) = %q, want %q", tt.tr, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New("pdf", &bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
