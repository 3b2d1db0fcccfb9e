package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"mosaic/internal/logging"
	"mosaic/internal/metrics"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// handle registers a pattern on the mux with request instrumentation. The
// metrics route label is the pattern without its method, so path values like
// item ids never explode label cardinality.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.Handler) {
	route := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		route = pattern[i+1:]
	}
	mux.Handle(pattern, s.instrument(route, h))
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	// API traffic is logged at info; media, static, and metrics requests
	// would flood the log at that level and stay at debug.
	level := slog.LevelDebug
	if strings.HasPrefix(route, "/api/") {
		level = slog.LevelInfo
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		metrics.ObserveRequest(route, rec.status, elapsed.Seconds())

		logLevel := level
		if rec.status >= http.StatusInternalServerError {
			logLevel = slog.LevelError
		}
		s.logger.Log(ctx, logLevel, "request",
			slog.String("method", r.Method),
			slog.String(logging.FieldPath, r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", elapsed),
			slog.String(logging.FieldRequestID, requestID),
		)
	})
}

// rateLimited guards credential endpoints with the shared login limiter.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gzipHandler compresses text responses. Video and image payloads are
// excluded: recompressing mp4 and jpeg burns CPU for nothing.
func gzipHandler(next http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.ContentTypes([]string{
			"application/json",
			"text/html",
			"text/css",
			"text/plain",
			"application/javascript",
			"text/javascript",
		}),
		gzhttp.MinSize(1024),
	)
	if err != nil {
		return next
	}
	return wrapper(next)
}
