package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsCreatedTotal counts sessions created on first contact.
	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatsnap",
		Subsystem: "quota",
		Name:      "sessions_created_total",
		Help:      "Total anonymous sessions created.",
	})

	// SessionsSweptTotal counts sessions removed by the retention sweeper.
	SessionsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatsnap",
		Subsystem: "quota",
		Name:      "sessions_swept_total",
		Help:      "Total sessions deleted after their cookie lifetime elapsed.",
	})

	// UsageAttemptsTotal counts screenshot export attempts by result.
	UsageAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatsnap",
		Subsystem: "quota",
		Name:      "usage_attempts_total",
		Help:      "Screenshot export attempts by result.",
	}, []string{"result"})

	// CheckoutsTotal counts payment intent creation attempts by outcome.
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatsnap",
		Subsystem: "payment",
		Name:      "checkouts_total",
		Help:      "Payment intent creation attempts by outcome.",
	}, []string{"tier", "outcome"})

	// ConfirmationsTotal counts payment confirmations by outcome.
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatsnap",
		Subsystem: "payment",
		Name:      "confirmations_total",
		Help:      "Payment confirmation attempts by outcome.",
	}, []string{"outcome"})

	// GatewayDuration tracks payment gateway call latency.
	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatsnap",
		Subsystem: "payment",
		Name:      "gateway_duration_seconds",
		Help:      "Payment gateway call duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
)

var (
	// HTTPRequestsTotal counts handled requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatsnap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatsnap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
