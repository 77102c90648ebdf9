package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dicabi/inmobiliaria/logger"
)

const traceHeader = "X-Trace-ID"

// LoggerMiddleware assigns every request a trace id, stores a request-scoped
// logger in the context and logs the outcome of the request.
func LoggerMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceHeader)
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.NewString()
			}

			coreLogger := base.With(slog.String("trace_id", traceID))
			_, hasToken := bearerToken(r)
			httpLogger := coreLogger.With(
				slog.String("http_method", r.Method),
				slog.String("http_path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Bool("bearer", hasToken),
			)

			ctx := logger.WithContext(r.Context(), coreLogger)
			ctx = logger.WithTraceID(ctx, traceID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set(traceHeader, traceID)
			start := time.Now()

			httpLogger.Debug("Request started")
			next.ServeHTTP(ww, r.WithContext(ctx))
			httpLogger.Info("Request finished",
				slog.Int("status_code", ww.Status()),
				slog.Int("bytes_written", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// bearerToken extracts the token sent by the front end. Tokens are issued and
// checked by the auth service; here they are only observed.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
