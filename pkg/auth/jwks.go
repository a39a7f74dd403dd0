package auth

import (
	"context"
	"fmt"
	"time"

	"staybook/pkg/logger"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier validates RS256 session tokens against the identity
// provider's published key set, refreshed in the background.
type JWKSVerifier struct {
	jwks    *keyfunc.JWKS
	options []jwt.ParserOption
}

func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string, log *logger.Logger) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error("Failed to refresh JWKS", "url", jwksURL, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		options = append(options, jwt.WithAudience(audience))
	}

	return &JWKSVerifier{jwks: jwks, options: options}, nil
}

func (v *JWKSVerifier) Verify(_ context.Context, tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, v.jwks.Keyfunc, v.options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromToken(token)
}

func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}
