package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)

	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by result.",
		},
		[]string{"result"},
	)

	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart mutations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	checkoutQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkout_queue_depth",
			Help: "Number of checkout jobs waiting for a worker.",
		},
	)
)

func ObserveCheckout(result string) {
	checkoutsTotal.WithLabelValues(result).Inc()
}

func ObserveCartOperation(operation, result string) {
	cartOperationsTotal.WithLabelValues(operation, result).Inc()
}

func SetCheckoutQueueDepth(depth int) {
	checkoutQueueDepth.Set(float64(depth))
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if pattern := r.Pattern; pattern != "" {
			path = pattern
		}

		httpRequestsTotal.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
		httpRequestsDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
