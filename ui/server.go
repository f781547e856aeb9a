package ui

import (
	"context"
	"net/http"
	"sync"

	"sliceinsight/app"
	"sliceinsight/internal"
	"sliceinsight/internal/errors"
	"sliceinsight/ports"
	"sliceinsight/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server exposes the insight service over HTTP. The service is not safe for
// concurrent use, so every handler holds mu while touching it.
type Server struct {
	router  *gin.Engine
	service *app.ComparisonInsightService
	source  ports.MetricSource
	logger  *internal.Logger

	mu sync.Mutex
}

// NewServer creates the server. source may be nil, in which case payloads
// only arrive through POST /api/insight.
func NewServer(service *app.ComparisonInsightService, source ports.MetricSource, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  gin.New(),
		service: service,
		source:  source,
		logger:  logger.WithPrefix("http"),
	}
	s.router.Use(gin.Recovery(), middleware.RequestLogger(s.logger))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/insight")
	api.GET("", s.handleView)
	api.POST("", s.handleIngest)
	api.POST("/reload", s.handleReload)
	api.PUT("/mode", s.handleSetMode)
	api.PUT("/sensitivity", s.handleSetSensitivity)
	api.POST("/group/toggle", s.handleToggleGroupRows)
	api.POST("/rows/toggle", s.handleToggleRow)
	api.GET("/selection", s.handleSelection)
	api.POST("/selection", s.handleSelect)
	api.GET("/export.csv", s.handleExportCSV)
	api.GET("/export.xlsx", s.handleExportXLSX)
	api.GET("/report.html", s.handleReport)

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("serving insight API on http://%s", addr)
	return s.router.Run(addr)
}

// Reload pulls a fresh payload from the configured source
func (s *Server) Reload(ctx context.Context) error {
	if s.source == nil {
		return errors.NotFound("metric source")
	}

	s.mu.Lock()
	s.service.SetLoadingStatus(true)
	s.mu.Unlock()

	metrics, err := s.source.LoadMetrics(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.service.SetLoadingStatus(false)
		return errors.Wrap(err, "failed to load metrics")
	}
	return s.service.UpdateMetrics(metrics)
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
