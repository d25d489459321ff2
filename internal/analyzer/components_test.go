package analyzer

import (
	"testing"

	"github.com/atikulmunna/logreader/internal/model"
)

func TestSplitStripsCarriageReturns(t *testing.T) {
	lines := Split("first\r\nsecond")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Content != "first" || lines[0].Number != 1 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Content != "second" || lines[1].Number != 2 {
		t.Errorf("unexpected second line: %+v", lines[1])
	}
}

func TestSearchIgnoresCaseAndKeepsPositions(t *testing.T) {
	content := "GET /health 200\nERROR db down\nGET /health 200\nerror: retry"

	got := Search(content, "Error")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Number != 2 || got[0].Content != "ERROR db down" {
		t.Errorf("unexpected first match: %+v", got[0])
	}
	if got[1].Number != 4 {
		t.Errorf("expected second match on line 4, got %d", got[1].Number)
	}

	// Duplicate lines keep their own numbers.
	dup := Search(content, "/health")
	if len(dup) != 2 || dup[0].Number != 1 || dup[1].Number != 3 {
		t.Errorf("expected matches on lines 1 and 3, got %+v", dup)
	}

	// Regex metacharacters are matched literally.
	if got := Search("a.b\naxb", "a.b"); len(got) != 1 || got[0].Number != 1 {
		t.Errorf("expected literal match on line 1, got %+v", got)
	}

	if got := Search(content, ""); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for empty query, got %#v", got)
	}
}

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		line string
		want model.SeverityCounts
	}{
		{"Connection FAILED", model.SeverityCounts{Error: 1}},
		{"unhandled Exception", model.SeverityCounts{Error: 1}},
		{"WARN low disk", model.SeverityCounts{Warning: 1}},
		{"Information: started", model.SeverityCounts{Info: 1}},
		{"info: retry after warning, error code 3", model.SeverityCounts{Error: 1, Warning: 1, Info: 1}},
		{"all good", model.SeverityCounts{}},
	}
	for _, tt := range tests {
		got := Classify(Split(tt.line))
		if got != tt.want {
			t.Errorf("Classify(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestExtractTimestampsKeepsDocumentOrder(t *testing.T) {
	lines := Split("2024-05-02 08:00:00 b\nx 2024-05-01T09:00:00 then 2024-05-01T07:00:00\nnone")
	got := ExtractTimestamps(lines)

	want := []model.TimestampSample{
		{Value: "2024-05-02 08:00:00", Line: 1},
		{Value: "2024-05-01T09:00:00", Line: 2},
		{Value: "2024-05-01T07:00:00", Line: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	tr := TimeRangeOf(got)
	if tr == nil {
		t.Fatal("expected a range")
	}
	// First and last by position, so the range runs backwards.
	if tr.Duration() >= 0 {
		t.Errorf("expected negative duration for out-of-order logs, got %v", tr.Duration())
	}
}

func TestTimeRangeNeedsTwoValidTimestamps(t *testing.T) {
	one := ExtractTimestamps(Split("2024-01-01T00:00:00 only"))
	if TimeRangeOf(one) != nil {
		t.Error("expected nil range for a single timestamp")
	}

	bogus := ExtractTimestamps(Split("2024-13-45T99:00:00 a\n2024-01-01T00:00:00 b"))
	if len(bogus) != 2 {
		t.Fatalf("expected 2 unvalidated samples, got %d", len(bogus))
	}
	if TimeRangeOf(bogus) != nil {
		t.Error("expected nil range when an endpoint is not a real date")
	}
}

func TestDetectOnlyReportsFiredRules(t *testing.T) {
	got := Detect(Split("null pointer here\nfine"), DefaultRules())
	if len(got) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(got))
	}
	if got[0].Issue.Type != "null-pointer" || got[0].Issue.Count != 1 {
		t.Errorf("unexpected detection: %+v", got[0].Issue)
	}
}

func TestBuildRecommendationsSkipsRulesWithout(t *testing.T) {
	dets := []Detection{{Rule: Rule{Name: "quiet"}, Issue: model.Issue{Type: "quiet", Count: 1}}}
	recs := BuildRecommendations(model.SeverityCounts{}, dets)
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %+v", recs)
	}
}
