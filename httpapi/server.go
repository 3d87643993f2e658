// Package httpapi serves card masking over HTTP. Request bodies are streamed
// through a masking pipeline straight into the response.
package httpapi

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SamuelRCrider/luhny/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderStreamID carries the stream identifier used in logs and audit events
const HeaderStreamID = "X-Luhny-Stream-Id"

// Config holds HTTP server settings
type Config struct {
	Addr              string // Listen address, e.g. ":8080"
	MaxBodyBytes      int64  // Request body limit, 0 means unlimited
	RequestsPerMinute int    // Per-client limit on masking requests, 0 disables
}

// Server is the masking HTTP server
type Server struct {
	config Config
	policy *core.Policy
	audit  *core.AuditLogger
	logger *slog.Logger
	router *gin.Engine
	srv    *http.Server
}

// ValidateRequest is the body of POST /v1/validate
type ValidateRequest struct {
	Number string `json:"number" binding:"required"`
}

// ValidateResponse is returned by POST /v1/validate
type ValidateResponse struct {
	Valid  bool `json:"valid"`
	Digits int  `json:"digits"`
}

// NewServer creates a server with routes registered. audit may be nil.
func NewServer(config Config, policy *core.Policy, audit *core.AuditLogger, logger *slog.Logger) *Server {
	if policy == nil {
		policy = core.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		policy: policy,
		audit:  audit,
		logger: logger,
	}
	s.router = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/v1")
	if s.config.RequestsPerMinute > 0 {
		v1.Use(NewRateLimiter(s.config.RequestsPerMinute, time.Minute).Middleware())
	}
	v1.POST("/mask", s.handleMask)
	v1.POST("/validate", s.handleValidate)

	return router
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and blocks until the server stops.
// It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.config.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight streams
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleMask streams the request body through a masker into the response.
// Output is buffered in 4 KiB chunks; a body that exceeds MaxBodyBytes after the
// first chunk reached the client ends with a truncated 200 instead of a 413.
func (s *Server) handleMask(c *gin.Context) {
	body := c.Request.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, s.config.MaxBodyBytes)
	}

	streamID := uuid.NewString()
	c.Header(HeaderStreamID, streamID)
	c.Header("Content-Type", "text/plain; charset=utf-8")

	masker := core.NewMasker(bufio.NewReader(body), bufio.NewWriter(c.Writer), s.policy).
		WithStreamID(streamID).
		WithAuditLogger(s.audit).
		WithLogger(s.logger)

	if err := masker.Mask(); err != nil {
		s.logger.Error("Failed to mask request body", "stream_id", streamID, "error", err)

		// Once bytes reached the client the status can no longer change
		if c.Writer.Written() {
			c.Abort()
			return
		}

		c.Writer.Header().Del("Content-Type")
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	stats := masker.Stats()
	s.logger.Debug("Masked request body",
		"stream_id", streamID,
		"runes", stats.RunesRead,
		"masked_runs", stats.MaskedRuns,
		"digits_masked", stats.DigitsMasked)
}

func (s *Server) handleValidate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:  core.IsCardNumber(req.Number),
		Digits: core.CountDigits(req.Number),
	})
}

// requestLogger logs one line per request; bodies are never logged
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}
