package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_queries_total",
			Help: "Total number of post store queries executed",
		},
		[]string{"query", "success"},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of post store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	PostViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "post_views_total",
			Help: "Total number of counted post detail views",
		},
	)

	ViewEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_events_total",
			Help: "Total number of view events by outcome",
		},
		[]string{"result"},
	)
)

func ObserveStoreQuery(query string, start time.Time, err error) {
	StoreQueriesTotal.WithLabelValues(query, strconv.FormatBool(err == nil)).Inc()
	StoreQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

func ObserveHTTPRequest(route, method string, status int, start time.Time) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}
