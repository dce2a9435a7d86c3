package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_http_requests_total",
		Help: "HTTP requests processed, by method and status class.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crediario_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	salesFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_sales_finalized_total",
		Help: "Sales finalized, by payment method.",
	}, []string{"payment_method"})

	checkoutRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crediario_checkout_rejections_total",
		Help: "Checkouts rejected, by error code.",
	}, []string{"code"})
)

func observeRequest(method string, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// metricsHandler serves the Prometheus scrape endpoint.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}
