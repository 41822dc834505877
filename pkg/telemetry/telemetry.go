package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SendsTotal counts completed sends, success or in-band error.
	SendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nebula_sends_total",
		Help: "Completed message sends, including error replies.",
	})

	// GatewayErrorsTotal counts gateway failures by kind: "api" for
	// provider-reported errors, "transport" for unreachable/parse failures.
	GatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nebula_gateway_errors_total",
		Help: "Model gateway failures by kind.",
	}, []string{"kind"})

	// GatewayDuration observes the latency of outbound gateway calls.
	GatewayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nebula_gateway_duration_seconds",
		Help:    "Latency of model gateway calls.",
		Buckets: prometheus.DefBuckets,
	})

	// StoreMutationsTotal counts store mutations by operation.
	StoreMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nebula_store_mutations_total",
		Help: "Durable store mutations by operation.",
	}, []string{"op"})

	// NotificationsTotal counts fired notification cues.
	NotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nebula_notifications_total",
		Help: "Notification cues fired after successful sends.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nebula_http_request_duration_seconds",
		Help:    "HTTP request latency by path and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "status"})
)

// Middleware records request timing for every handled request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		requestDuration.WithLabelValues(r.URL.Path, strconv.Itoa(srw.status)).
			Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
