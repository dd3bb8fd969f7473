package middleware

import (
	"errors"
	"strconv"
	"time"

	applogger "FinNotify/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finnotify_http_requests_total",
			Help: "Serve-mode requests by route template and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finnotify_http_request_duration_seconds",
			Help:    "Serve-mode request latency. Evaluations wait on upstream providers.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route", "method", "class"}),
	}
	if err := reg.Register(m.requests); err != nil {
		m.requests = existing(err, m.requests)
	}
	if err := reg.Register(m.duration); err != nil {
		m.duration = existing(err, m.duration)
	}
	return m
}

func existing[C prometheus.Collector](err error, fallback C) C {
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if c, ok := are.ExistingCollector.(C); ok {
			return c
		}
	}
	panic(err)
}

// Metrics counts requests by route template (c.Path()) on reg. It logs 5xx
// answers at error level and requests slower than slow at warn level.
func Metrics(l *applogger.Logger, reg prometheus.Registerer, slow time.Duration) echo.MiddlewareFunc {
	m := newHTTPMetrics(reg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			took := time.Since(start)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method, code := c.Request().Method, c.Response().Status
			m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
			m.duration.WithLabelValues(route, method, strconv.Itoa(code/100)+"xx").Observe(took.Seconds())

			fields := []applogger.Field{
				applogger.String("route", route),
				applogger.String("method", method),
				applogger.Int("status", code),
				applogger.Duration("duration_ms", took),
			}
			switch {
			case code >= 500:
				l.Error("http request failed", fields...)
			case slow > 0 && took >= slow:
				l.Warn("http request slow", fields...)
			}
			return nil
		}
	}
}
