package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Garwin4j/paypal-bridge/internal/observability"
	"github.com/google/uuid"
)

// ObservabilityMiddleware combines:
// - X-Request-ID generation + echo
// - access logging with low-cardinality fields
// - HTTP metrics (counter + histogram)
func ObservabilityMiddleware(tel observability.Observability) func(http.Handler) http.Handler {
	logger := observability.NopLogger()
	metrics := observability.NopMetrics()
	if tel != nil {
		logger = tel.Logger()
		metrics = tel.Metrics()
	}
	requests := metrics.Counter(observability.MHTTPRequests)
	durations := metrics.Histogram(observability.MHTTPRequestDuration)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)

			start := time.Now()
			lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lrw, r)

			statusLabel := strconv.Itoa(lrw.status)
			labels := []observability.Label{
				observability.L("method", r.Method),
				observability.L("path", r.URL.Path),
				observability.L("status", statusLabel),
			}
			requests.Add(1, labels...)
			durations.Observe(time.Since(start).Seconds(), labels...)

			logger.Info("http_request",
				observability.F("request_id", rid),
				observability.F("method", r.Method),
				observability.F("path", r.URL.Path),
				observability.F("status", lrw.status),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
