// Package server assembles the HTTP surface: gin engine, middleware, health
// probe, and the GraphQL endpoint.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"

	"github.com/amora-app/amora-server/internal/app"
)

// New builds the router. GET /graphql serves GraphiQL for poking at the API;
// POST /graphql executes operations.
func New(appCtx *app.AppContext, schema graphql.Schema) *gin.Engine {
	if appCtx.Config != nil && appCtx.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(appCtx.Logger))
	engine.Use(cors.New(corsConfig(appCtx)))

	engine.GET("/healthz", healthHandler(appCtx))

	gql := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: true,
	})
	engine.GET("/graphql", gin.WrapH(gql))
	engine.POST("/graphql", gin.WrapH(gql))

	return engine
}

func healthHandler(appCtx *app.AppContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sqlDB, err := appCtx.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
			return
		}
		if appCtx.RedisCache != nil {
			if err := appCtx.RedisCache.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(attrs, "errors", c.Errors.String())...)
			return
		}
		log.Info("request", attrs...)
	}
}

func corsConfig(appCtx *app.AppContext) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	origins := []string{}
	if appCtx.Config != nil {
		origins = appCtx.Config.HTTP.AllowedOrigins
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
