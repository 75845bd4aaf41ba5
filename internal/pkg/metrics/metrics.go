package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons recorded by EnrollmentRejections
const (
	ReasonValidation = "validation"
	ReasonNotFound   = "not_found"
	ReasonCapacity   = "capacity"
	ReasonDuplicate  = "duplicate"
	ReasonForbidden  = "forbidden"
	ReasonStorage    = "storage"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edutrack",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edutrack",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	EnrollmentAdmissions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edutrack",
			Name:      "enrollment_admissions_total",
			Help:      "Enrollments admitted",
		},
	)

	EnrollmentRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edutrack",
			Name:      "enrollment_rejections_total",
			Help:      "Enrollment requests rejected, by reason",
		},
		[]string{"reason"},
	)

	Unenrollments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edutrack",
			Name:      "unenrollments_total",
			Help:      "Enrollments removed",
		},
	)

	CounterReconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edutrack",
			Name:      "enrolled_count_reconciliations_total",
			Help:      "Enrolled count recomputations, by whether drift was found",
		},
		[]string{"drift"},
	)
)

// Registry holds every EduTrack collector plus the Go and process collectors
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCounter,
		RequestDuration,
		EnrollmentAdmissions,
		EnrollmentRejections,
		Unenrollments,
		CounterReconciliations,
	)
}

// ObserveReconciliation records one recount and whether it changed the counter
func ObserveReconciliation(drifted bool) {
	CounterReconciliations.WithLabelValues(strconv.FormatBool(drifted)).Inc()
}

// MetricsMiddleware records request counts and latencies per route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// PrometheusHandler serves Registry in the exposition format
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
