package log

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id assigned to each HTTP request
const RequestIDHeader = "X-Request-Id"

// HTTPMiddleware logs one line per request with its id, status, size and duration.
// A request id supplied by the client is kept; otherwise a new one is generated.
func HTTPMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := req.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			m := httpsnoop.CaptureMetrics(next, w, req)

			fields := []interface{}{
				"request_id", id,
				"method", req.Method,
				"path", req.URL.Path,
				"status", m.Code,
				"size", m.Written,
				"duration_ms", m.Duration.Milliseconds(),
				"remote_addr", req.RemoteAddr,
			}
			if m.Code >= http.StatusInternalServerError {
				logger.Errorw("http request", fields...)
			} else {
				logger.Infow("http request", fields...)
			}
		})
	}
}
