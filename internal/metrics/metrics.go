package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ComplaintsSubmittedTotal counts stored complaints by priority tier.
	ComplaintsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civictriage",
		Subsystem: "complaints",
		Name:      "submitted_total",
		Help:      "Total number of complaints stored, labeled by priority tier.",
	}, []string{"priority"})

	// UnroutedComplaintsTotal counts complaints stored without a department.
	UnroutedComplaintsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civictriage",
		Subsystem: "complaints",
		Name:      "unrouted_total",
		Help:      "Total number of complaints for which no department matched the category.",
	}, []string{"category"})

	// StatusTransitionsTotal counts persisted status changes by target status.
	StatusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civictriage",
		Subsystem: "complaints",
		Name:      "status_transitions_total",
		Help:      "Total number of persisted status changes, labeled by the new status.",
	}, []string{"status"})

	FeedbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "civictriage",
		Subsystem: "feedback",
		Name:      "submitted_total",
		Help:      "Total number of feedback records stored.",
	})

	// AttachmentsTotal counts processed upload files by result (stored, compressed, failed).
	AttachmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civictriage",
		Subsystem: "attachments",
		Name:      "processed_total",
		Help:      "Total number of uploaded files processed, labeled by result.",
	}, []string{"result"})

	// RequestDurationSeconds is handler latency per route.
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "civictriage",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, labeled by method, route and status code.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route", "code"})
)

// Register registers the service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ComplaintsSubmittedTotal,
			UnroutedComplaintsTotal,
			StatusTransitionsTotal,
			FeedbackTotal,
			AttachmentsTotal,
			RequestDurationSeconds,
		)
	})
}

// Middleware observes request latency. Unmatched routes are labeled "unmatched"
// to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDurationSeconds.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
