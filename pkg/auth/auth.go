package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the verified subject of a request. Subject is the identity
// provider's user id and doubles as the user document id.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Image   string
}

// Claims are the token claims read from the identity provider. Providers
// disagree on the image claim name, so both are accepted.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() *Identity {
	name := c.Name
	if name == "" {
		name = c.Username
	}
	image := c.ImageURL
	if image == "" {
		image = c.Picture
	}
	return &Identity{
		Subject: c.Subject,
		Email:   c.Email,
		Name:    name,
		Image:   image,
	}
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}

func identityFromToken(token *jwt.Token) (*Identity, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims.Identity(), nil
}
