package middleware

import (
	"context"
	"net/http"

	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, appErr *apperrors.AppError) {
	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response",
			"request_id", RequestIDFrom(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
}
