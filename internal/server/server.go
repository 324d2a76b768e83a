package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/guiyumin/linkbot/internal/core/extractor"
	"github.com/guiyumin/linkbot/internal/core/version"
)

// Resolver is what the API needs from the title resolver
type Resolver interface {
	TitlesFor(ctx context.Context, text string) []string
	TitleFor(ctx context.Context, rawURL string) (extractor.TitleResult, error)
}

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// TitlesRequest is the request body for POST /api/titles
type TitlesRequest struct {
	Text string `json:"text" binding:"required"`
}

// TitleRequest is the request body for POST /api/title
type TitleRequest struct {
	URL string `json:"url" binding:"required"`
}

// Server is the HTTP API for linkbot
type Server struct {
	port     int
	apiKey   string
	resolver Resolver
	log      zerolog.Logger
	server   *http.Server
}

// NewServer creates a new HTTP server
func NewServer(port int, apiKey string, resolver Resolver, log zerolog.Logger) *Server {
	s := &Server{
		port:     port,
		apiKey:   apiKey,
		resolver: resolver,
		log:      log.With().Str("component", "http").Logger(),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler builds the routed, instrumented handler
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(s.loggingMiddleware())
	if s.apiKey != "" {
		engine.Use(s.authMiddleware())
	}

	api := engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/titles", s.handleTitles)
	api.POST("/title", s.handleTitle)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{
			Code:    404,
			Data:    nil,
			Message: "not found",
		})
	})

	return otelhttp.NewHandler(engine, "linkbot")
}

// Start starts the HTTP server and blocks until it stops. After Stop it
// returns nil at once.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Bool("auth", s.apiKey != "").Msg("Starting linkbot API")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Middleware

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Health endpoint doesn't require auth
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != s.apiKey {
			c.JSON(http.StatusUnauthorized, Response{
				Code:    401,
				Data:    nil,
				Message: "invalid or missing API key",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// loggingMiddleware attaches a request-scoped logger to the request context
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := s.log.With().Str("req_id", uuid.NewString()).Logger()
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("Handled request")
	}
}

// Handlers

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"status":  "ok",
			"version": version.Version,
		},
		Message: "everything is good",
	})
}

func (s *Server) handleTitles(c *gin.Context) {
	var req TitlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body: text is required",
		})
		return
	}

	lines := s.resolver.TitlesFor(c.Request.Context(), req.Text)
	if lines == nil {
		lines = []string{}
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    gin.H{"lines": lines},
		Message: fmt.Sprintf("%d titles", len(lines)),
	})
}

func (s *Server) handleTitle(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "invalid request body: url is required",
		})
		return
	}

	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Data:    nil,
			Message: "url must be an absolute http(s) URL",
		})
		return
	}

	res, err := s.resolver.TitleFor(c.Request.Context(), req.URL)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("url", req.URL).Msg("Title lookup failed")
		c.JSON(http.StatusBadGateway, Response{
			Code:    502,
			Data:    nil,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Data:    res,
		Message: strings.TrimSpace(res.String()),
	})
}
