// Package store keeps uploaded logs and their analyses. It owns the
// uploaded -> analyzing -> analyzed lifecycle; the analyzer itself stays
// stateless and never touches the store.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
)

var (
	// ErrNotFound is returned for unknown log IDs.
	ErrNotFound = errors.New("log not found")
	// ErrAnalyzing is returned when an analysis of the same log is already running.
	ErrAnalyzing = errors.New("analysis already in progress")
)

// Analyzer runs one analysis. *analyzer.Analyzer satisfies it.
type Analyzer interface {
	Run(ctx context.Context, content string) (model.AnalysisResult, error)
}

// Backend persists logs and results across restarts.
// *sqlite.DB satisfies it.
type Backend interface {
	SaveLog(l model.Log) error
	SaveAnalysis(logID string, res model.AnalysisResult) error
	DeleteAnalysis(logID string) error
	DeleteLog(id string) error
	LoadAll() ([]model.Log, map[string]model.AnalysisResult, error)
}

type entry struct {
	log    model.Log
	result *model.AnalysisResult
}

// Store coordinates concurrent access to logs and analyses.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	backend Backend
	now     func() time.Time
}

// New creates a Store. With a non-nil backend, previously saved logs are
// loaded and every change is written through.
func New(backend Backend) (*Store, error) {
	s := &Store{
		entries: make(map[string]*entry),
		backend: backend,
		now:     time.Now,
	}
	if backend == nil {
		return s, nil
	}

	logs, results, err := backend.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	for _, l := range logs {
		e := &entry{log: l}
		// An analysis interrupted by a restart never completed.
		if l.Status == model.StatusAnalyzing {
			e.log.Status = model.StatusUploaded
		}
		// Only an analyzed log has a result that matches its content.
		if res, ok := results[l.ID]; ok && e.log.Status == model.StatusAnalyzed {
			r := res
			e.result = &r
		}
		s.entries[l.ID] = e
		s.order = append(s.order, l.ID)
	}
	return s, nil
}

// Add stores a new log and returns it in the uploaded state.
func (s *Store) Add(source, content string) (model.Log, error) {
	l := model.Log{
		ID:         uuid.NewString(),
		Source:     source,
		Content:    content,
		UploadedAt: s.now(),
		Status:     model.StatusUploaded,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLog(l); err != nil {
		return model.Log{}, err
	}
	s.entries[l.ID] = &entry{log: l}
	s.order = append(s.order, l.ID)
	return l, nil
}

// Get returns the log with the given ID.
func (s *Store) Get(id string) (model.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return model.Log{}, ErrNotFound
	}
	return e.log, nil
}

// List returns all logs in upload order.
func (s *Store) List() []model.Log {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Log, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].log)
	}
	return out
}

// Len returns the number of stored logs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FindBySource returns the most recently uploaded log for source.
func (s *Store) FindBySource(source string) (model.Log, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		if e := s.entries[s.order[i]]; e.log.Source == source {
			return e.log, true
		}
	}
	return model.Log{}, false
}

// Replace swaps the content of an existing log and resets it to uploaded,
// dropping any previous analysis.
func (s *Store) Replace(id, content string) (model.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return model.Log{}, ErrNotFound
	}
	if e.log.Status == model.StatusAnalyzing {
		return model.Log{}, ErrAnalyzing
	}
	updated := e.log
	updated.Content = content
	updated.Status = model.StatusUploaded
	updated.Error = ""
	if err := s.persistLog(updated); err != nil {
		return model.Log{}, err
	}
	if err := s.dropAnalysis(id); err != nil {
		return model.Log{}, err
	}
	e.log = updated
	e.result = nil
	return updated, nil
}

// Delete removes a log and its analysis. It returns the removed analysis,
// if any, so callers can retract it from reports.
func (s *Store) Delete(id string) (*model.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.backend != nil {
		if err := s.backend.DeleteLog(id); err != nil {
			return nil, err
		}
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return e.result, nil
}

// Analysis returns the stored result for a log.
func (s *Store) Analysis(id string) (model.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.result == nil {
		return model.AnalysisResult{}, ErrNotFound
	}
	return *e.result, nil
}

// Results returns every completed analysis as events, in upload order.
func (s *Store) Results() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Event
	for _, id := range s.order {
		e := s.entries[id]
		if e.result != nil {
			out = append(out, model.Event{Kind: model.EventAnalyzed, LogID: id, Source: e.log.Source, Result: *e.result})
		}
	}
	return out
}

// Analyze runs the analyzer over a stored log. A log that is already
// analyzed returns its cached result unless force is set. The analyzer
// runs without the lock held, so other logs stay available meanwhile.
func (s *Store) Analyze(ctx context.Context, id string, force bool, a Analyzer) (model.AnalysisResult, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return model.AnalysisResult{}, ErrNotFound
	}
	switch {
	case e.log.Status == model.StatusAnalyzing:
		s.mu.Unlock()
		return model.AnalysisResult{}, ErrAnalyzing
	case e.log.Status == model.StatusAnalyzed && e.result != nil && !force:
		res := *e.result
		s.mu.Unlock()
		return res, nil
	}
	e.log.Status = model.StatusAnalyzing
	e.log.Error = ""
	content := e.log.Content
	s.mu.Unlock()

	res, runErr := a.Run(ctx, content)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The log may have been deleted while the analyzer ran.
	if cur, ok := s.entries[id]; !ok || cur != e {
		return model.AnalysisResult{}, ErrNotFound
	}

	if runErr != nil {
		// A failed log keeps no result, not even one from an earlier run.
		e.log.Status = model.StatusFailed
		e.log.Error = runErr.Error()
		e.result = nil
		if err := s.persistLog(e.log); err != nil {
			logger.Warn("failed to persist log status", "log_id", id, "error", err)
		}
		if err := s.dropAnalysis(id); err != nil {
			logger.Warn("failed to drop stale analysis", "log_id", id, "error", err)
		}
		return model.AnalysisResult{}, runErr
	}

	e.log.Status = model.StatusAnalyzed
	e.result = &res
	if err := s.persistLog(e.log); err != nil {
		logger.Warn("failed to persist log status", "log_id", id, "error", err)
	}
	if s.backend != nil {
		if err := s.backend.SaveAnalysis(id, res); err != nil {
			logger.Warn("failed to persist analysis", "log_id", id, "error", err)
		}
	}
	return res, nil
}

func (s *Store) persistLog(l model.Log) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.SaveLog(l)
}

func (s *Store) dropAnalysis(id string) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.DeleteAnalysis(id)
}
