// Package metrics collects Prometheus metrics and exposes them for scraping.
//
// Every metric is registered on a caller-supplied registry instead of the
// global default, so tests can build a fresh Collector per case without
// "duplicate metrics collector registration" panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/kudos-board/internal/model"
)

// Collector records HTTP traffic and kudo activity.
//
// It satisfies service.KudoRecorder and middleware.RequestRecorder.
type Collector struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	kudosPosted *prometheus.CounterVec
	kudosHidden prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kudos_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		kudosPosted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_created_total",
			Help: "Kudos created, by category.",
		}, []string{"category"}),
		kudosHidden: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kudos_hidden_total",
			Help: "Hide requests that completed.",
		}),
	}

	reg.MustRegister(c.requests, c.duration, c.kudosPosted, c.kudosHidden)

	return c
}

// RecordRequest counts one finished HTTP request.
// route is the chi pattern ("/api/kudos/{id}/hide"), never the raw path,
// so label cardinality stays bounded.
func (c *Collector) RecordRequest(method, route string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// KudoCreated counts a stored kudo.
func (c *Collector) KudoCreated(category model.Category) {
	c.kudosPosted.WithLabelValues(string(category)).Inc()
}

// KudoHidden counts a completed hide.
func (c *Collector) KudoHidden() {
	c.kudosHidden.Inc()
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
