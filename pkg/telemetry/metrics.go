package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatportal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// StoreOps counts store operations by kind.
	StoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatportal_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation"},
	)

	// GatewayCalls counts LLM gateway completions. outcome is "ok" or
	// "degraded"; degraded calls still produced a usable text result.
	GatewayCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatportal_gateway_completions_total",
			Help: "Total number of LLM gateway completions",
		},
		[]string{"purpose", "outcome"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies per route. Must run
// inside the mux router so the path label is the route template
// ("/api/conversations/{id}"), keeping series cardinality bounded and
// conversation IDs and share tokens out of the metrics page.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := routeLabel(r)
		HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
