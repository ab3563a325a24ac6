package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/ganttdash/internal/services/edit"
	"github.com/mkarlsen/ganttdash/internal/store"
)

// Server provides the HTTP surface of the Gantt dashboard: the chart data
// feed, filter management, date edits, and the static frontend.
type Server struct {
	engine    *gin.Engine
	store     *store.Store
	edits     *edit.Coordinator
	metrics   *Metrics
	logger    *slog.Logger
	staticDir string
	theme     string
}

// New constructs the HTTP server with routes and middleware configured.
func New(st *store.Store, edits *edit.Coordinator, logger *slog.Logger, staticDir, theme string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz"))

	srv := &Server{
		engine:    router,
		store:     st,
		edits:     edits,
		metrics:   NewMetrics(),
		logger:    logger,
		staticDir: staticDir,
		theme:     theme,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts listening on addr and blocks until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", slog.String("addr", addr))
	return s.engine.Run(addr)
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/gantt", s.handleGantt)
		api.PUT("/gantt/:id/dates", s.handleEditDates)

		api.GET("/filters", s.handleGetFilters)
		api.PUT("/filters", s.handlePutFilters)

		api.POST("/refresh", s.handleRefresh)
		api.GET("/metrics", s.handleMetrics)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleMetrics reports server counters since startup.
func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetSnapshot())
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
