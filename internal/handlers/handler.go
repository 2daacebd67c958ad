package handlers

import (
	"context"

	"sensor_analytics/internal/logger"
	"sensor_analytics/internal/metrics"
	"sensor_analytics/internal/ratelimit"
	"sensor_analytics/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RateLimiter decides whether a client may issue another write request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	metrics        *metrics.Metrics
	limiter        RateLimiter
	allowedOrigins []string
	trustedProxies []string
}

// Option customizes a Handler.
type Option func(*Handler)

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithRateLimiter limits the write endpoints per client IP.
func WithRateLimiter(l RateLimiter) Option {
	return func(h *Handler) { h.limiter = l }
}

// WithAllowedOrigins sets the CORS origins; "*" allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// WithTrustedProxies lists the proxies (IPs or CIDRs) whose X-Forwarded-For
// is honored for the client IP. Without it only the peer address counts.
func WithTrustedProxies(proxies []string) Option {
	return func(h *Handler) { h.trustedProxies = proxies }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		services:       services,
		log:            log,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	// gin trusts every proxy by default; the rate limiter keys on ClientIP.
	if err := router.SetTrustedProxies(h.trustedProxies); err != nil {
		if h.log != nil {
			h.log.Errorw("invalid trusted proxies; trusting none", "err", err, "proxies", h.trustedProxies)
		}
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(h.recovery(), h.cors(), h.metrics.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/", h.index)
	router.GET("/health", h.health)

	h.registerAnalyticsRoutes(router)

	// Snapshot stream over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAnalyticsRoutes(r *gin.Engine) {
	api := r.Group("/api/analytics")
	{
		api.GET("/stats", h.getStats)
		api.GET("/alerts", h.getAlerts)
		api.GET("/history", h.getHistory)
	}

	writes := api.Group("", h.rateLimit)
	{
		// Body example: {"temperature":22.5,"humidity":45,"sensor_id":"SENSOR-1"}
		writes.POST("/process", h.processReading)
		writes.POST("/analyze", h.analyzeReading)
	}
}
