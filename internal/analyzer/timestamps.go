package analyzer

import (
	"regexp"
	"time"

	"github.com/atikulmunna/logreader/internal/model"
)

var timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)

const (
	layoutISO   = "2006-01-02T15:04:05"
	layoutSpace = "2006-01-02 15:04:05"
)

// ExtractTimestamps collects every timestamp substring in document order.
// Values are not checked for calendar correctness.
func ExtractTimestamps(lines []model.Line) []model.TimestampSample {
	var out []model.TimestampSample
	for _, l := range lines {
		for _, m := range timestampRe.FindAllString(l.Content, -1) {
			out = append(out, model.TimestampSample{Value: m, Line: l.Number})
		}
	}
	return out
}

// TimeRangeOf returns the range between the first and last samples by
// position. Samples are deliberately not sorted. The range is nil when
// there are fewer than two samples or an endpoint is not a real date.
func TimeRangeOf(samples []model.TimestampSample) *model.TimeRange {
	if len(samples) < 2 {
		return nil
	}
	start, ok := parseTimestamp(samples[0].Value)
	if !ok {
		return nil
	}
	end, ok := parseTimestamp(samples[len(samples)-1].Value)
	if !ok {
		return nil
	}
	return &model.TimeRange{Start: start, End: end}
}

func parseTimestamp(s string) (time.Time, bool) {
	layout := layoutISO
	if len(s) > 10 && s[10] == ' ' {
		layout = layoutSpace
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
