package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/BarkinBalci/marketing-insights-service/docs"
	"github.com/BarkinBalci/marketing-insights-service/internal/service"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthCheck struct {
	name   string
	pinger Pinger
}

// Option configures optional handler behaviour
type Option func(*Handler)

// WithHealthCheck adds a named dependency to GET /health
func WithHealthCheck(name string, pinger Pinger) Option {
	return func(h *Handler) {
		h.checks = append(h.checks, healthCheck{name: name, pinger: pinger})
	}
}

// WithTracing instruments every route with OpenTelemetry spans
func WithTracing(serviceName string) Option {
	return func(h *Handler) {
		h.router.Use(otelgin.Middleware(serviceName))
	}
}

type Handler struct {
	eventService   service.EventServicer
	anomalies      service.AnomalyDetector
	journeyService service.JourneyServicer
	checks         []healthCheck
	router         *gin.Engine
	log            *zap.Logger
}

func NewHandler(eventService service.EventServicer, anomalies service.AnomalyDetector, journeyService service.JourneyServicer, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		eventService:   eventService,
		anomalies:      anomalies,
		journeyService: journeyService,
		router:         gin.Default(),
		log:            log,
	}

	for _, opt := range opts {
		opt(h)
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)

	h.router.POST("/events", h.publishEvent)
	h.router.POST("/events/bulk", h.publishEventsBulk)
	h.router.GET("/events/metrics", h.getMetrics)

	h.router.POST("/metrics/daily", h.upsertDailyMetrics)

	h.router.GET("/insights/anomalies", h.getAnomalies)

	h.router.POST("/journeys/process", h.processJourneys)
	h.router.GET("/journeys", h.listJourneys)
	h.router.GET("/journeys/attribution", h.getAttribution)

	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	h.router.GET("/internal/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service and its stores are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.pinger.Ping(ctx); err != nil {
			h.log.Warn("Health check failed", zap.String("dependency", check.name), zap.Error(err))
			checks[check.name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[check.name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}

// statusFor maps service errors onto HTTP status and error codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrFutureTimestamp):
		return http.StatusBadRequest, "validation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
