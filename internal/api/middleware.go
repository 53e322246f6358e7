package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/signalsfoundry/stellar-geodesy/internal/logging"
)

// RequestIDHeader carries the client-supplied request ID; one is generated
// when absent and echoed back on the response.
const RequestIDHeader = "X-Request-Id"

// RequestLogging ensures every request carries a request_id in its context
// and logs one line per request with method, route, and duration.
func RequestLogging(log logging.Logger) mux.MiddlewareFunc {
	if log == nil {
		log = logging.Noop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := r.Header.Get(RequestIDHeader); id != "" {
				ctx = logging.ContextWithRequestID(ctx, id)
			}
			ctx, reqLog := logging.WithRequestLogger(ctx, log)
			w.Header().Set(RequestIDHeader, logging.RequestIDFromContext(ctx))

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			reqLog.Info(ctx, "request handled",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.String("duration", time.Since(start).String()),
			)
		})
	}
}
