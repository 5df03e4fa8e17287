// Package handler wires HTTP endpoints to the translation pipeline. Handlers
// only deserialize and delegate; all semantics live in the core packages.
package handler

import (
	"net/http"
	"time"

	"lingo-load/internal/pipeline"
	"lingo-load/internal/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/dig"
	"gorm.io/gorm"
)

// Server contains handler dependencies.
type Server struct {
	Pipeline      *pipeline.Pipeline
	DB            *gorm.DB
	ConfigManager types.ConfigManager
	startTime     time.Time
}

// ServerParams defines the dependencies for the Server handler.
type ServerParams struct {
	dig.In
	Pipeline      *pipeline.Pipeline
	DB            *gorm.DB
	ConfigManager types.ConfigManager
}

// NewServer creates a new Server handler instance.
func NewServer(params ServerParams) *Server {
	return &Server{
		Pipeline:      params.Pipeline,
		DB:            params.DB,
		ConfigManager: params.ConfigManager,
		startTime:     time.Now(),
	}
}

// Health handles the health check endpoint.
func (s *Server) Health(c *gin.Context) {
	status := "healthy"
	httpStatus := http.StatusOK

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err != nil || sqlDB.Ping() != nil {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
