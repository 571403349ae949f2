package middleware

import (
	"log/slog"
	"net/http"

	"github.com/thinkex/clusters-api/internal/api/shared"
	"github.com/thinkex/clusters-api/internal/platform/logger"
)

// Trace assigns each request a trace ID and stores a logger carrying it in
// the context, so every log line downstream of the handler correlates back
// to the request. Apply it early in the middleware chain.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.Default().With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
