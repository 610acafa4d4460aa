package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caa_portal_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "caa_portal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ApplicationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caa_portal_applications_created_total",
			Help: "Licence applications created, by licence type and initial status",
		},
		[]string{"licence_type", "status"},
	)

	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caa_portal_application_status_transitions_total",
			Help: "Applied application status transitions",
		},
		[]string{"from", "to"},
	)

	OptionsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caa_portal_options_cache_lookups_total",
			Help: "Options cache lookups by result (hit, miss, error, stale_write)",
		},
		[]string{"result"},
	)
)

// GinMiddleware records request counts and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// knownLicenceTypes bounds the licence_type label; the column itself accepts any code.
var knownLicenceTypes = map[string]struct{}{
	"SPL": {}, "PPL": {}, "CPL": {}, "ATPL": {}, "IR": {},
	"MER": {}, "FI": {}, "CCL": {}, "ELP": {},
}

// LicenceTypeLabel returns the label value recorded for a licence type.
func LicenceTypeLabel(licenceType string) string {
	if _, ok := knownLicenceTypes[licenceType]; ok {
		return licenceType
	}
	return "other"
}
