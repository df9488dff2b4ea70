// Package metrics exposes authentication and request counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records authentication outcomes. Labels never carry subjects or
// token material.
type Collector struct {
	logins        *prometheus.CounterVec
	tokenRejected *prometheus.CounterVec
	accessDenied  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_login_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		tokenRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_token_rejected_total",
			Help: "Bearer tokens that did not resolve to a principal, by reason.",
		}, []string{"reason"}),
		accessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_access_denied_total",
			Help: "Requests rejected by authorization guards, by kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmanager_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status"}),
	}

	reg.MustRegister(c.logins, c.tokenRejected, c.accessDenied, c.httpRequests)
	return c
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordTokenRejected counts a token that failed to resolve.
func (c *Collector) RecordTokenRejected(reason string) {
	c.tokenRejected.WithLabelValues(reason).Inc()
}

// RecordAccessDenied counts a guard rejection; kind is "unauthenticated" or
// "forbidden".
func (c *Collector) RecordAccessDenied(kind string) {
	c.accessDenied.WithLabelValues(kind).Inc()
}

// RecordHTTPStatus counts a response status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
