package api

import (
	"net/http"
	"time"

	"github.com/fatali-fataliyev/budget_dashboard/internal/contextutil"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	TraceIDHeader    = "X-Trace-ID"
	maxTraceIDLength = 64
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// WithTracing tags every request with a trace ID (the caller's X-Trace-ID when
// present) and logs it once the handler returns.
func WithTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" || len(traceID) > maxTraceIDLength {
			traceID = uuid.New().String()
		}
		w.Header().Set(TraceIDHeader, traceID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(contextutil.WithTraceID(r.Context(), traceID)))

		entry := logging.Logger.WithFields(logrus.Fields{
			"trace_id":    traceID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Error("request handled")
		} else {
			entry.Info("request handled")
		}
	})
}
