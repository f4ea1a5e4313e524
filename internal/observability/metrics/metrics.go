package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics carries the fuel-stock domain instruments.
type Metrics struct {
	suppliesRecorded prometheus.Counter
	supplyRejections *prometheus.CounterVec
	tankLevelLiters  *prometheus.GaugeVec
	tankLevelPercent *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		suppliesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fuelstock_supplies_recorded_total",
			Help: "Supply events recorded successfully.",
		}),
		supplyRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelstock_supply_rejections_total",
			Help: "Supply events rejected, by reason.",
		}, []string{"reason"}),
		tankLevelLiters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fuelstock_tank_level_liters",
			Help: "Current tank level in liters.",
		}, []string{"tank"}),
		tankLevelPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fuelstock_tank_level_percent",
			Help: "Current tank level as a percentage of capacity.",
		}, []string{"tank"}),
	}
	reg.MustRegister(m.suppliesRecorded, m.supplyRejections, m.tankLevelLiters, m.tankLevelPercent)
	return m
}

func (m *Metrics) IncSupplyRecorded() {
	if m == nil {
		return
	}
	m.suppliesRecorded.Inc()
}

func (m *Metrics) IncSupplyRejected(reason string) {
	if m == nil {
		return
	}
	if strings.TrimSpace(reason) == "" {
		reason = "unknown"
	}
	m.supplyRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetTankLevel(tank string, liters, percent float64) {
	if m == nil {
		return
	}
	m.tankLevelLiters.WithLabelValues(tank).Set(liters)
	m.tankLevelPercent.WithLabelValues(tank).Set(percent)
}

// HTTPMetrics instruments inbound HTTP traffic.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	h := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fuelstock_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fuelstock_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(h.requests, h.duration)
	return h
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		h.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
