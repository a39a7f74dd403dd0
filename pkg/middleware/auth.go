package middleware

import (
	"context"
	"errors"
	"net/http"

	"staybook/pkg/auth"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const userKey contextKey = "user"

// UserProvisioner returns the stored profile for a verified identity,
// creating it on first sight.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, id *auth.Identity) (*model.User, error)
}

// Authenticate guards a single route. The verified identity and the user
// profile are attached to the request context.
func Authenticate(verifier auth.Verifier, users UserProvisioner, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token, err := auth.BearerToken(r)
			if err != nil {
				reject(w, log, r, apperrors.Unauthorized("Not authorized, missing token"))
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Warn("Token verification failed",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				reject(w, log, r, apperrors.Unauthorized("Not authorized, invalid token"))
				return
			}

			user, err := users.EnsureUser(r.Context(), identity)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Error("Failed to provision user",
						"request_id", RequestIDFrom(r.Context()),
						"user_id", identity.Subject,
						"error", err,
					)
				}
				reject(w, log, r, apperrors.AsAppError(err))
				return
			}

			ctx := auth.WithIdentity(r.Context(), identity)
			ctx = context.WithValue(ctx, userKey, user)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

func CurrentUser(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// WithUser is used by tests that bypass token verification.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
