// Package api serves the food classifier, macro scaler and entitlement
// checks over HTTP, plus an MCP tools/call endpoint for agent clients.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	engine *gin.Engine
	db     *sql.DB
	logger *zap.Logger
}

// NewRouter wires every route. An empty allowedOrigins disables CORS.
func NewRouter(db *sql.DB, logger *zap.Logger, allowedOrigins []string) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		engine: gin.New(),
		db:     db,
		logger: logger,
	}
	r.engine.Use(gin.Recovery(), r.requestLogger())
	if len(allowedOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = allowedOrigins
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		r.engine.Use(cors.New(config))
	}

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := r.engine.Group("/api")
	{
		api.GET("/foods/analyze", r.analyzeFood)
		api.POST("/nutrition/scale", r.scaleNutrition)
		api.GET("/entitlements", r.getEntitlements)
	}
	r.engine.POST("/mcp", r.handleMCP)
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		r.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
