package auth

import (
	"context"

	"staybook/pkg/logger"
)

type Settings struct {
	JWKSURL    string
	Issuer     string
	Audience   string
	HMACSecret string
}

// NewVerifier prefers the identity provider's key set and falls back to the
// shared secret. The returned func releases background resources.
func NewVerifier(ctx context.Context, s Settings, log *logger.Logger) (Verifier, func(), error) {
	if s.JWKSURL != "" {
		v, err := NewJWKSVerifier(ctx, s.JWKSURL, s.Issuer, s.Audience, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Token verification via JWKS", "url", s.JWKSURL)
		return v, v.Close, nil
	}

	log.Warn("Token verification via shared HMAC secret; use only outside production")
	return NewHMACVerifier(s.HMACSecret), func() {}, nil
}
