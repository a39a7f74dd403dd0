package middleware

import (
	"mime"
	"net/http"
)

// MaxRequestSize caps request bodies. Multipart uploads get their own, larger limit.
func MaxRequestSize(jsonLimit, multipartLimit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				limit := jsonLimit
				if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == ContentTypeMultipart {
					limit = multipartLimit
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
