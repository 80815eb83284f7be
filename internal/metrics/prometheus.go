package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_chat_requests_total",
			Help: "Chat exchanges handled, labeled by serving path",
		},
		[]string{"source"},
	)

	ChatDegradationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_chat_degradations_total",
			Help: "AI path failures that degraded to the fallback table",
		},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_ai_gateway_duration_seconds",
			Help:    "AI gateway call latency",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	AdvisorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_advisor_requests_total",
			Help: "Career advisor requests by status",
		},
		[]string{"status"},
	)

	AdvisorCoverage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_advisor_coverage_percent",
			Help:    "Skill coverage of generated plans",
			Buckets: []float64{0, 10, 25, 50, 75, 90, 100},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_cache_hits_total",
			Help: "Cache hits by cache type",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_cache_misses_total",
			Help: "Cache misses by cache type",
		},
		[]string{"cache_type"},
	)
)

func Register() {
	prometheus.MustRegister(
		ChatRequestsTotal,
		ChatDegradationsTotal,
		GatewayDuration,
		AdvisorRequestsTotal,
		AdvisorCoverage,
		CacheHits,
		CacheMisses,
	)
}

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
