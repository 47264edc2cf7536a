// Package review serves a small local web API for working the queue:
// list pending items, read one, approve or reject it. The pipeline stays
// file-based; this is just a friendlier front end for the same files.
package review

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lookout/internal/router"
	"lookout/pkg/config"
	"lookout/pkg/logging"
)

// ServerConfig wires the review server.
type ServerConfig struct {
	Port   string
	Router *router.Router
	Logger logging.Logger
}

type Server struct {
	port   string
	queue  *router.Router
	logger logging.Logger
	engine *gin.Engine
}

func NewServer(cfg ServerConfig) *Server {
	if config.GetEnv("GIN_MODE", "debug") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		port:   cfg.Port,
		queue:  cfg.Router,
		logger: cfg.Logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lookout",
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.GET("/queue", s.listQueue)
	api.GET("/queue/:file", s.getQueueFile)
	api.POST("/queue/:file/approve", s.setStatus("approved"))
	api.POST("/queue/:file/reject", s.setStatus("rejected"))

	s.engine = engine
	return s
}

// Handler exposes the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		s.logger.WithField("port", s.port).Info("Starting review server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("Failed to start review server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.logger.Info("Shutting down review server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) listQueue(c *gin.Context) {
	entries, err := s.queue.ListQueue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []router.QueueEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (s *Server) getQueueFile(c *gin.Context) {
	name := c.Param("file")
	if !validQueueName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}
	fm, body, err := s.queue.ReadQueueFile(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file":        name,
		"frontmatter": fm,
		"body":        body,
	})
}

func (s *Server) setStatus(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("file")
		if !validQueueName(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
			return
		}
		if err := s.queue.SetStatus(name, status); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.logger.WithFields(logging.Fields{
			"file":   name,
			"status": status,
		}).Info("Queue file status updated")
		c.JSON(http.StatusOK, gin.H{"file": name, "status": status})
	}
}

// validQueueName rejects path traversal and non-queue files.
func validQueueName(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return strings.HasSuffix(name, ".md")
}
