package cmd

import (
	"context"
	"fmt"

	"github.com/atikulmunna/logreader/internal/aggregator"
	"github.com/atikulmunna/logreader/internal/analyzer"
	"github.com/atikulmunna/logreader/internal/config"
	"github.com/atikulmunna/logreader/internal/hub"
	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/server"
	"github.com/atikulmunna/logreader/internal/storage/sqlite"
	"github.com/atikulmunna/logreader/internal/store"
)

// eventBuffer sizes the queue between producers and the hub.
const eventBuffer = 256

// runtime wires the long-running components shared by serve and watch.
type runtime struct {
	db       *sqlite.DB
	store    *store.Store
	analyzer *analyzer.Analyzer
	events   chan model.Event
	hub      *hub.Hub
	agg      *aggregator.Aggregator
}

func newRuntime(c *config.Config) (*runtime, error) {
	rt := &runtime{
		analyzer: analyzer.New(c.Analysis.AnalyzerOptions()...),
		events:   make(chan model.Event, eventBuffer),
	}

	var backend store.Backend
	if c.Store.Path != "" {
		db, err := sqlite.Open(c.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		rt.db = db
		backend = db
	}

	st, err := store.New(backend)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.store = st

	rt.hub = hub.New(rt.events)
	rt.agg = aggregator.New(rt.hub.Subscribe(), rt.hub.Dropped, st)

	if c.Store.Path != "" {
		logger.Info("store opened", "path", c.Store.Path, "logs", st.Len(), "analyses", len(st.Results()))
	}
	return rt, nil
}

// start runs the hub and aggregator until ctx is cancelled.
func (rt *runtime) start(ctx context.Context) {
	go rt.hub.Start(ctx)
	go rt.agg.Start(ctx)
}

// publish queues an event for subscribers without blocking the caller.
// Report totals come from the store, so a dropped event is only logged.
func (rt *runtime) publish(ev model.Event) {
	select {
	case rt.events <- ev:
	default:
		logger.Warn("event queue full, dropping event", "log_id", ev.LogID, "source", ev.Source)
	}
}

func (rt *runtime) newServer(c *config.Config) *server.Server {
	return server.New(server.Options{
		Store:      rt.store,
		Analyzer:   rt.analyzer,
		Hub:        rt.hub,
		Aggregator: rt.agg,
		Events:     rt.events,
		MaxBytes:   c.Analysis.MaxBytes,
		Addr:       c.Server.Addr(),
	})
}

func (rt *runtime) close() {
	if rt.db == nil {
		return
	}
	if err := rt.db.Close(); err != nil {
		logger.Warn("failed to close store", "error", err)
	}
}
