// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request and domain metrics for Prometheus scraping.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	signups      prometheus.Counter
	logins       prometheus.Counter
	groups       prometheus.Counter
	posts        prometheus.Counter
	otpsIssued   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics
// with the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sarvam_http_requests_total",
			Help: "Total HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sarvam_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sarvam_signups_total",
			Help: "Total successful account registrations.",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sarvam_logins_total",
			Help: "Total successful logins.",
		}),
		groups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sarvam_groups_created_total",
			Help: "Total expense groups created.",
		}),
		posts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sarvam_posts_created_total",
			Help: "Total posts created.",
		}),
		otpsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sarvam_otps_issued_total",
			Help: "Total password reset codes issued.",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.signups,
		c.logins,
		c.groups,
		c.posts,
		c.otpsIssued,
	)

	return c
}

// RecordRequest records one completed HTTP request.
func (c *Collector) RecordRequest(route, method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordSignup records a successful registration.
func (c *Collector) RecordSignup() { c.signups.Inc() }

// RecordLogin records a successful login.
func (c *Collector) RecordLogin() { c.logins.Inc() }

// RecordGroupCreated records a created expense group.
func (c *Collector) RecordGroupCreated() { c.groups.Inc() }

// RecordPostCreated records a created post.
func (c *Collector) RecordPostCreated() { c.posts.Inc() }

// RecordOTPIssued records an issued password reset code.
func (c *Collector) RecordOTPIssued() { c.otpsIssued.Inc() }

// Handler returns the HTTP handler serving Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
