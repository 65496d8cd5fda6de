// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the brief pipeline over HTTP with gin:
//
//	POST /generate           run with progress as Server-Sent Events
//	POST /briefs             run and return the result as JSON
//	GET  /knowledge/search   rank knowledge records for a query
//	GET  /health             liveness
//	GET  /metrics            Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/brief-engine/internal/knowledge"
	"github.com/pdiddy/brief-engine/internal/pipeline"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":5000"

const shutdownTimeout = 10 * time.Second

// errRequired is the body returned when brand or goal is missing.
var errRequired = gin.H{"error": "Brand and goal are required"}

// Runner executes pipeline runs. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, in types.BriefInput) (pipeline.Result, error)
	Stream(ctx context.Context, in types.BriefInput) <-chan pipeline.Event
}

// Ranker scores knowledge records. *knowledge.Store satisfies it.
type Ranker interface {
	Rank(q knowledge.Query) []knowledge.ScoredResult
}

// Server routes HTTP requests to the pipeline.
type Server struct {
	runner Runner
	ranker Ranker
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the gin engine and registers routes.
func New(runner Runner, ranker Ranker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{runner: runner, ranker: ranker, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.POST("/generate", s.handleGenerate)
	engine.POST("/briefs", s.handleBrief)
	engine.GET("/knowledge/search", s.handleSearch)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) bindInput(c *gin.Context) (types.BriefInput, bool) {
	var in types.BriefInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.logger.Warn("invalid request body", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, errRequired)
		return in, false
	}
	if err := pipeline.ValidateInput(in); err != nil {
		c.JSON(http.StatusBadRequest, errRequired)
		return in, false
	}
	return in, true
}

// handleGenerate streams run events as "event: <type>\ndata: <json>\n\n"
// frames, flushing after each one.
func (s *Server) handleGenerate(c *gin.Context) {
	in, ok := s.bindInput(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	for e := range s.runner.Stream(c.Request.Context(), in) {
		if err := writeEvent(c.Writer, e); err != nil {
			s.logger.Warn("writing event", "type", e.Type, "error", err)
			return
		}
		if e.Terminal() {
			return
		}
	}
}

func writeEvent(w gin.ResponseWriter, e pipeline.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", e.Type, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// handleBrief runs synchronously and returns the result.
func (s *Server) handleBrief(c *gin.Context) {
	in, ok := s.bindInput(c)
	if !ok {
		return
	}

	res, err := s.runner.Run(c.Request.Context(), in)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "run_id": res.RunID})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSearch(c *gin.Context) {
	q := knowledge.Query{
		Text:  c.Query("q"),
		Award: c.Query("award"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		q.Limit = n
	}
	results := s.ranker.Rank(q)
	if results == nil {
		results = []knowledge.ScoredResult{}
	}
	c.JSON(http.StatusOK, gin.H{"query": q.Text, "results": results})
}

func statusFor(err error) int {
	var (
		ie *pipeline.ClientInputError
		pe *pipeline.PersistError
	)
	switch {
	case errors.As(err, &ie):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		return http.StatusInternalServerError
	case errors.Is(err, pipeline.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrCancelled):
		return 499
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
