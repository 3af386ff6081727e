package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainhub_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ModerationEvents counts publication lifecycle actions on posts.
	ModerationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainhub_moderation_events_total",
		Help: "Total number of post publish/approve actions",
	}, []string{"action"})

	// RatingsRecorded counts rating writes split by created vs updated.
	RatingsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainhub_ratings_recorded_total",
		Help: "Total number of rating upserts by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// MetricsMiddleware adapts the Prometheus middleware to a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
