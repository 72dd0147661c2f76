package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Login outcome labels recorded by ObserveLogin.
const (
	LoginOutcomeSuccess     = "success"
	LoginOutcomeFailed      = "failed"
	LoginOutcomeRateLimited = "rate_limited"
)

// HTTPMetrics instruments the portal's request handling: request count
// and latency by method, route, and status, an in-flight gauge, and a
// login counter by outcome fed from the auth handler.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	logins   *prometheus.CounterVec
}

// NewHTTPMetrics builds and registers the portal collectors. A nil
// registerer uses the process default. Collectors already present in
// the registry are reused, so the engine can be rebuilt in tests.
func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aba",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests handled by the lesson archive, by method, route, and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aba",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency, by method, route, and status.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aba",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aba",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome (success, failed, rate_limited).",
		}, []string{"outcome"}),
	}

	if existing, err := register(reg, m.requests); err != nil {
		return nil, fmt.Errorf("register request counter: %w", err)
	} else if cv, ok := existing.(*prometheus.CounterVec); ok {
		m.requests = cv
	}

	if existing, err := register(reg, m.duration); err != nil {
		return nil, fmt.Errorf("register duration histogram: %w", err)
	} else if hv, ok := existing.(*prometheus.HistogramVec); ok {
		m.duration = hv
	}

	if existing, err := register(reg, m.inFlight); err != nil {
		return nil, fmt.Errorf("register in-flight gauge: %w", err)
	} else if g, ok := existing.(prometheus.Gauge); ok {
		m.inFlight = g
	}

	if existing, err := register(reg, m.logins); err != nil {
		return nil, fmt.Errorf("register login counter: %w", err)
	} else if cv, ok := existing.(*prometheus.CounterVec); ok {
		m.logins = cv
	}

	return m, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// ObserveLogin records one login attempt outcome.
func (m *HTTPMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Handler returns the instrumentation middleware. Unmatched paths share
// one route label so probing bots cannot inflate label cardinality, and
// scrape traffic on /metrics is not self-counted.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.requests.With(labels).Inc()
		m.duration.With(labels).Observe(time.Since(start).Seconds())
	}
}
