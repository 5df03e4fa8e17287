// Package router assembles the gin engine and its route table.
package router

import (
	"lingo-load/internal/handler"
	"lingo-load/internal/middleware"
	"lingo-load/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP engine with global middleware and all routes.
func NewRouter(serverHandler *handler.Server, configManager types.ConfigManager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger(configManager.GetLogConfig()))
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.SecurityHeaders())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerSystemRoutes(router, serverHandler)
	registerAPIRoutes(router, serverHandler, configManager)

	return router
}

func registerSystemRoutes(router *gin.Engine, serverHandler *handler.Server) {
	router.GET("/health", serverHandler.Health)
}

func registerAPIRoutes(router *gin.Engine, serverHandler *handler.Server, configManager types.ConfigManager) {
	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(configManager.GetAuthConfig()))

	v1.POST("/translate", serverHandler.Translate)
	v1.POST("/detect", serverHandler.Detect)
}
