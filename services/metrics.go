package services

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vehicore",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Backend requests by endpoint and status code.",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vehicore",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Backend request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	unauthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vehicore",
		Subsystem: "gateway",
		Name:      "unauthorized_total",
		Help:      "Responses that tore down the session.",
	})
)

func observe(endpoint string, status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	requestsTotal.WithLabelValues(endpoint, label).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
