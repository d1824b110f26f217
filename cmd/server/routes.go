// Package main provides the portfolio chatbot server entry point.
package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/server"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, handler *server.Handler, registry *prometheus.Registry, cfg *config.Config) {
	router.GET("/", handler.Status)
	router.HEAD("/", handler.Status)

	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	router.GET("/healthz", handler.Health)
	router.HEAD("/healthz", handler.Health)

	// Readiness Probe - profile loaded plus chat-log database ping
	router.GET("/ready", handler.Ready)
	router.HEAD("/ready", handler.Ready)

	// Chat API
	router.POST("/chatbot", handler.Chat)
	router.GET("/history", handler.History)
	router.DELETE("/history", handler.ClearHistory)

	// Prometheus metrics endpoint, Basic Auth when a password is set
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsPassword != "", cfg.MetricsUsername, cfg.MetricsPassword),
		metricsHandler)
}

// metricsAuthMiddleware enforces Basic Auth for /metrics.
// If enabled is false, authentication is disabled (pass-through).
func metricsAuthMiddleware(enabled bool, username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, hasAuth := c.Request.BasicAuth()
		if !hasAuth {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Constant-time comparison to prevent timing attacks
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !userMatch || !passMatch {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
