package middleware

import (
	"mime"
	"net/http"

	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
)

const (
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
)

var acceptedContentTypes = map[string]bool{
	ContentTypeJSON:      true,
	ContentTypeMultipart: true,
}

// ContentTypeValidation answers 415 to a write request whose body is neither
// JSON nor multipart. Bodiless writes such as PATCH /cancel pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || !acceptedContentTypes[mediaType] {
				log.Warn("Invalid Content-Type header",
					"request_id", RequestIDFrom(r.Context()),
					"content_type", r.Header.Get("Content-Type"),
					"method", r.Method,
					"path", r.URL.Path,
				)
				reject(w, log, r, apperrors.New(
					apperrors.KindValidation,
					apperrors.CodeBadRequest,
					"Content-Type must be application/json or multipart/form-data",
					http.StatusUnsupportedMediaType,
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	default:
		return false
	}
}
