package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/atikulmunna/logreader/internal/model"
)

// rateWindow is the sliding window used for the analyses-per-minute rate.
const rateWindow = time.Minute

// Stats holds a point-in-time snapshot of report totals across stored logs.
type Stats struct {
	Uptime            string                 `json:"uptime"`
	StoredLogs        int                    `json:"stored_logs"`
	AnalyzedLogs      int                    `json:"analyzed_logs"`
	TotalLines        int                    `json:"total_lines"`
	TotalErrors       int                    `json:"total_errors"`
	TotalWarnings     int                    `json:"total_warnings"`
	TotalInfos        int                    `json:"total_infos"`
	TotalIssues       int                    `json:"total_issues"`
	IssueCounts       map[string]int         `json:"issue_counts"`
	IssueSeverity     map[model.Severity]int `json:"issue_severity"`
	SeverityBreakdown map[model.Severity]int `json:"severity_breakdown"`
	AnalysesPerMinute float64                `json:"analyses_per_minute"`
	LastAnalysis      *time.Time             `json:"last_analysis,omitempty"`
	DroppedEvents     int64                  `json:"dropped_events"`
}

// Source supplies the stored logs. *store.Store satisfies it.
type Source interface {
	Len() int
	Results() []model.Event
}

// Aggregator computes report totals from the store and tracks the
// completion rate from the Hub's event stream. Totals are read from the
// store on every snapshot, so an event missed by a slow subscriber never
// leaves a deleted or failed log in the report.
type Aggregator struct {
	mu           sync.RWMutex
	startTime    time.Time
	window       []time.Time // analysis completion times for the rate
	lastAnalysis time.Time
	dropped      func() int64
	source       Source
	events       <-chan model.Event
}

// New creates an Aggregator that reads from the given Hub subscriber channel.
// droppedFn reports the Hub's dropped event count.
func New(events <-chan model.Event, droppedFn func() int64, source Source) *Aggregator {
	return &Aggregator{
		startTime: time.Now(),
		dropped:   droppedFn,
		source:    source,
		events:    events,
	}
}

// Snapshot returns the current totals.
func (a *Aggregator) Snapshot() Stats {
	results := a.source.Results()

	stats := Stats{
		Uptime:            time.Since(a.startTime).Truncate(time.Second).String(),
		StoredLogs:        a.source.Len(),
		AnalyzedLogs:      len(results),
		IssueCounts:       make(map[string]int),
		IssueSeverity:     make(map[model.Severity]int),
		SeverityBreakdown: make(map[model.Severity]int),
		DroppedEvents:     a.dropped(),
	}

	a.mu.RLock()
	last := a.lastAnalysis
	cutoff := time.Now().Add(-rateWindow)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}
	a.mu.RUnlock()

	for _, ev := range results {
		s := ev.Result.Summary
		stats.TotalLines += s.TotalLines
		stats.TotalErrors += s.ErrorCount
		stats.TotalWarnings += s.WarningCount
		stats.TotalInfos += s.InfoCount
		stats.SeverityBreakdown[s.OverallSeverity]++
		stats.TotalIssues += len(ev.Result.Issues)
		for _, issue := range ev.Result.Issues {
			stats.IssueCounts[issue.Type] += issue.Count
			stats.IssueSeverity[issue.Severity]++
		}
		// Results restored from disk predate any event seen this session.
		if ev.Result.GeneratedAt.After(last) {
			last = ev.Result.GeneratedAt
		}
	}

	stats.AnalysesPerMinute = float64(recent) / rateWindow.Minutes()
	if !last.IsZero() {
		stats.LastAnalysis = &last
	}
	return stats
}

// Start consumes events and updates the rate. Blocks until the context is
// cancelled or the channel is closed.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.events:
			if !ok {
				return
			}
			a.Record(ev)
		case <-ticker.C:
			a.prune()
		}
	}
}

// Record applies one event. Completed analyses, stored or one-off, count
// toward the rate; other kinds are ignored.
func (a *Aggregator) Record(ev model.Event) {
	if ev.Kind != model.EventAnalyzed {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.window = append(a.window, time.Now())
	if ev.Result.GeneratedAt.After(a.lastAnalysis) {
		a.lastAnalysis = ev.Result.GeneratedAt
	}
}

// prune drops completion times older than the rate window.
func (a *Aggregator) prune() {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-rateWindow)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}
