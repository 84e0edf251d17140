package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnquangdev/agent-trainer/pkg/config"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg          *config.Config
	voiceHandler *Voice
	authMW       echo.MiddlewareFunc
	checks       map[string]HealthCheck
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, voiceHandler *Voice, authMW echo.MiddlewareFunc, checks map[string]HealthCheck) *Router {
	return &Router{
		cfg:          cfg,
		voiceHandler: voiceHandler,
		authMW:       authMW,
		checks:       checks,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 group
	v1 := e.Group("/v1")
	if rt.authMW != nil {
		v1.Use(rt.authMW)
	}

	rt.setupVoiceRoutes(v1)
}

// setupVoiceRoutes configures voice analysis routes
func (rt *Router) setupVoiceRoutes(g *echo.Group) {
	simulations := g.Group("/simulations")
	analyses := g.Group("/voice-analyses")

	if rt.voiceHandler == nil {
		simulations.POST("/:id/voice-analyses", rt.notImplemented)
		simulations.POST("/:id/recordings", rt.notImplemented)
		simulations.GET("/:id/voice-analyses", rt.notImplemented)
		analyses.GET("/:id", rt.notImplemented)
		analyses.GET("/:id/keywords/top", rt.notImplemented)
		return
	}

	simulations.POST("/:id/voice-analyses", rt.voiceHandler.AnalyzeRecording)
	simulations.POST("/:id/recordings", rt.voiceHandler.UploadRecording)
	simulations.GET("/:id/voice-analyses", rt.voiceHandler.ListAnalyses)
	analyses.GET("/:id", rt.voiceHandler.GetAnalysis)
	analyses.GET("/:id/keywords/top", rt.voiceHandler.TopKeywords)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status of the service and its dependencies
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(rt.checks))
	for name, check := range rt.checks {
		if err := check(ctx); err != nil {
			deps[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	environment := ""
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}

	return c.JSON(status, map[string]interface{}{
		"status":       overall,
		"environment":  environment,
		"dependencies": deps,
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}
