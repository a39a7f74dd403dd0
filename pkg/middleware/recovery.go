package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
)

// Recovery turns a handler panic into a 500. It sits outside RequestLogging,
// so the request id is read back from the response header.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(p)
				}
				log.Error("Panic recovered",
					"request_id", w.Header().Get(RequestIDHeader),
					"panic", p,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				reject(w, log, r, apperrors.Internal("Internal server error", nil))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
