package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/logreader/internal/analyzer"
	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
	"github.com/atikulmunna/logreader/internal/store"
)

// uploadRequest is the JSON upload body. Non-JSON bodies are taken as the
// raw log text, with the source from the "source" query parameter.
type uploadRequest struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// readUpload extracts the source name and log text from the request.
func (s *Server) readUpload(c *gin.Context) (source, content string, err error) {
	body := c.Request.Body
	if s.maxBytes > 0 {
		// JSON framing adds overhead on top of the log text itself.
		body = http.MaxBytesReader(c.Writer, body, s.maxBytes*2+1024)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", "", err
	}

	source = c.Query("source")
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req uploadRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return "", "", errBadRequest{err}
		}
		if req.Source != "" {
			source = req.Source
		}
		content = req.Content
	} else {
		content = string(raw)
	}
	if source == "" {
		source = "upload"
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return "", "", analyzer.ErrInputTooLarge
	}
	return source, content, nil
}

func (s *Server) handleUpload(c *gin.Context) {
	source, content, err := s.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	l, err := s.store.Add(source, content)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Info("log uploaded", "log_id", l.ID, "source", l.Source, "bytes", len(content))
	c.JSON(http.StatusCreated, l)
}

func (s *Server) handleList(c *gin.Context) {
	logs := s.store.List()
	// Listings omit the content; fetch a single log to get it.
	for i := range logs {
		logs[i].Content = ""
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) handleGet(c *gin.Context) {
	l, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	removed, err := s.store.Delete(id)
	if err != nil {
		writeError(c, err)
		return
	}
	ev := model.Event{Kind: model.EventDeleted, LogID: id}
	if removed != nil {
		ev.Result = *removed
	}
	s.publish(ev)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	id := c.Param("id")
	force, _ := strconv.ParseBool(c.Query("force"))

	before, err := s.store.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := s.store.Analyze(c.Request.Context(), id, force, s.analyzer)
	if err != nil {
		logger.Warn("analysis failed", "log_id", id, "error", err)
		// The store dropped any earlier result; tell stream clients.
		if !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrAnalyzing) {
			s.publish(model.Event{Kind: model.EventFailed, LogID: id, Source: before.Source, Error: err.Error()})
		}
		writeError(c, err)
		return
	}

	// Cached results were already published when first computed.
	if force || before.Status != model.StatusAnalyzed {
		logger.Info("log analyzed", "log_id", id,
			"errors", res.Summary.ErrorCount, "issues", len(res.Issues), "severity", res.Summary.OverallSeverity)
		s.publish(model.Event{Kind: model.EventAnalyzed, LogID: id, Source: before.Source, Result: res})
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	res, err := s.store.Analysis(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// searchResponse lists the lines of a log that contain the query.
type searchResponse struct {
	Query   string       `json:"query"`
	Total   int          `json:"total"`
	Matches []model.Line `json:"matches"`
}

func (s *Server) handleSearch(c *gin.Context) {
	l, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	q := c.Query("q")
	matches := analyzer.Search(l.Content, q)
	c.JSON(http.StatusOK, searchResponse{Query: q, Total: len(matches), Matches: matches})
}

// handleAnalyzeText analyzes the body without storing it.
func (s *Server) handleAnalyzeText(c *gin.Context) {
	source, content, err := s.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := s.analyzer.Run(c.Request.Context(), content)
	if err != nil {
		writeError(c, err)
		return
	}
	s.publish(model.Event{Kind: model.EventAnalyzed, Source: source, Result: res})
	c.JSON(http.StatusOK, res)
}

type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return "invalid request body: " + e.err.Error() }
func (e errBadRequest) Unwrap() error { return e.err }

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	var (
		status   = http.StatusInternalServerError
		tooLarge *http.MaxBytesError
		badReq   errBadRequest
	)
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrAnalyzing):
		status = http.StatusConflict
	case errors.Is(err, analyzer.ErrInputTooLarge), errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &badReq):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
