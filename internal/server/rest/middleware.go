package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recorder receives request and operation outcomes.
type Recorder interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	ObserveOperation(op string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, int, time.Duration) {}
func (nopRecorder) ObserveOperation(string, error)                    {}

// requestLogger logs one line per request and reports it to the recorder
// under the matched route pattern, which keeps label cardinality bounded.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		s.recorder.ObserveRequest(r.Method, route, status, elapsed)
		s.logger.Info(r.Context(), "request",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed", elapsed,
			"remote", r.RemoteAddr,
		)
	})
}
