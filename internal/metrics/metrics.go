package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the friend request counters.
const (
	OutcomeOK = "ok"
)

var (
	// FriendRequestOperations counts friend request operations by outcome. The
	// outcome is "ok" or the error kind returned to the caller.
	FriendRequestOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_friend_request_operations_total",
		Help: "Total number of friend request operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// RateLimitDecisions counts admission decisions for outbound friend requests.
	RateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_rate_limit_decisions_total",
		Help: "Total number of friend request rate limit decisions by backend and decision",
	}, []string{"backend", "decision"})

	// HTTPRequests counts served HTTP requests by method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circles_http_requests_total",
		Help: "Total number of HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration records HTTP request latency by method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "circles_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// RecordOperation increments the operation counter for the given outcome.
func RecordOperation(operation, outcome string) {
	FriendRequestOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordRateLimit records a single admission decision.
func RecordRateLimit(backend string, admitted bool) {
	decision := "denied"
	if admitted {
		decision = "admitted"
	}
	RateLimitDecisions.WithLabelValues(backend, decision).Inc()
}

// ObserveHTTPRequest records the status and latency of a served request.
func ObserveHTTPRequest(method string, status int, started time.Time) {
	method = methodLabel(method)
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// methodLabel keeps the method label bounded: anything outside the
// registered HTTP methods is reported as "other".
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions, http.MethodConnect, http.MethodTrace:
		return method
	default:
		return "other"
	}
}

// Handler exposes the default registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
