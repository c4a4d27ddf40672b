package mockapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry *prometheus.Registry

	started   prometheus.Counter
	answers   *prometheus.CounterVec
	conflicts prometheus.Counter
	duration  *prometheus.HistogramVec
}

func newMetrics(sessions func() int) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerflow_interviews_started_total",
			Help: "Interview sessions opened.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerflow_answers_total",
			Help: "Answers processed, by outcome.",
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerflow_lock_conflicts_total",
			Help: "Answers rejected because the session was busy.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careerflow_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	m.registry.MustRegister(
		m.started,
		m.answers,
		m.conflicts,
		m.duration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "careerflow_active_sessions",
			Help: "Interview sessions currently open.",
		}, func() float64 { return float64(sessions()) }),
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.duration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
