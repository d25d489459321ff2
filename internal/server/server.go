package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/logreader/internal/aggregator"
	"github.com/atikulmunna/logreader/internal/analyzer"
	"github.com/atikulmunna/logreader/internal/hub"
	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/store"
)

// Server holds the Gin engine and dependencies for the HTTP API.
type Server struct {
	engine     *gin.Engine
	store      *store.Store
	analyzer   *analyzer.Analyzer
	hub        *hub.Hub
	aggregator *aggregator.Aggregator
	events     chan<- model.Event
	maxBytes   int64
	addr       string
}

// Options groups the Server dependencies.
type Options struct {
	Store      *store.Store
	Analyzer   *analyzer.Analyzer
	Hub        *hub.Hub
	Aggregator *aggregator.Aggregator
	// Events feeds the hub; completed analyses are published here.
	Events   chan<- model.Event
	MaxBytes int64
	Addr     string
}

// New creates the HTTP API server.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:     engine,
		store:      opts.Store,
		analyzer:   opts.Analyzer,
		hub:        opts.Hub,
		aggregator: opts.Aggregator,
		events:     opts.Events,
		maxBytes:   opts.MaxBytes,
		addr:       opts.Addr,
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.aggregator.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"uptime":         stats.Uptime,
			"stored_logs":    stats.StoredLogs,
			"dropped_events": stats.DroppedEvents,
		})
	})

	api := s.engine.Group("/api")
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.aggregator.Snapshot())
	})
	api.POST("/analyze", s.handleAnalyzeText)
	api.GET("/rules", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.analyzer.Rules())
	})

	logs := api.Group("/logs")
	logs.POST("", s.handleUpload)
	logs.GET("", s.handleList)
	logs.GET("/:id", s.handleGet)
	logs.DELETE("/:id", s.handleDelete)
	logs.POST("/:id/analyze", s.handleAnalyze)
	logs.GET("/:id/analysis", s.handleGetAnalysis)
	logs.GET("/:id/search", s.handleSearch)

	s.engine.GET("/ws", s.handleWebSocket)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/allocs", gin.WrapH(pprof.Handler("allocs")))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// publish hands an event to the hub without blocking the request. Report
// totals are read from the store, so a dropped event only costs stream
// clients an update.
func (s *Server) publish(ev model.Event) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- ev:
	default:
		logger.Warn("event queue full, dropping event", "log_id", ev.LogID, "kind", ev.Kind)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
