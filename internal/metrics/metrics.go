package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	DynamicQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_dynamic_queries_total",
			Help: "Total number of dynamic listing queries by resource",
		},
		[]string{"resource"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_token_refreshes_total",
			Help: "Total number of refresh token exchanges",
		},
		[]string{"result"},
	)

	NotificationsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_notifications_published_total",
			Help: "Total number of notifications pushed to the activity feed",
		},
	)
)
