package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// errorTypes classifies the statuses the API actually returns.
var errorTypes = map[int]string{
	http.StatusBadRequest:            "client_error",
	http.StatusNotFound:              "not_found",
	http.StatusConflict:              "conflict",
	http.StatusRequestEntityTooLarge: "too_large",
	http.StatusTooManyRequests:       "session_limit",
	http.StatusNotImplemented:        "not_implemented",
}

// MetricsMiddleware records request count and latency per endpoint, counts
// error statuses, and logs server errors with the session they hit.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	log := logger.Named("http")
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		took := time.Since(start)
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, float64(took.Microseconds())/1000)

		if rec.status < http.StatusBadRequest {
			return
		}
		metrics.RecordErrorByComponent("http_"+endpoint, errorType(rec.status))
		if rec.status >= http.StatusInternalServerError {
			log.Error(r.Context(), "request failed",
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.String("session_id", r.PathValue("id")),
				logger.Int("status", rec.status),
				logger.Duration("took", took))
		}
	}
}

func errorType(status int) string {
	if t, ok := errorTypes[status]; ok {
		return t
	}
	if status >= http.StatusInternalServerError {
		return "server_error"
	}
	return "client_error"
}

// statusRecorder remembers the first status written.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}
