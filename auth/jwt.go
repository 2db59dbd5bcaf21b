// Package auth validates bearer JWTs presented by connecting players and
// extracts the player identity (id, display name) carried in the token's
// claims. It validates against the issuer's published JWKS and requires
// the EdDSA signing method; only the claim-extraction helpers are specific
// to this domain (a player-id and a display name rather than a generic
// account user-id).
package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ValidatePlayerToken validates a JWT against the JWKS published at
// baseURL + "/.well-known/jwks.json" and returns its claims. baseURL is the
// configured auth issuer (config.Config.AuthBaseURL); empty baseURL means
// token auth is not configured.
func ValidatePlayerToken(baseURL, tokenString string) (jwt.MapClaims, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("auth base URL is not set")
	}
	jwksURL := baseURL + "/.well-known/jwks.json"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	expectedIssuer := u.Scheme + "://" + u.Host

	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, jwks.Keyfunc,
		jwt.WithIssuer(expectedIssuer),
		jwt.WithValidMethods([]string{"EdDSA"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// PlayerIDFromClaims returns the board player-id to register the token
// bearer under: the "sub" claim, falling back to "id".
func PlayerIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}

// DisplayNameFromClaims returns the "name" claim trimmed of surrounding
// whitespace, or "" if absent — callers should fall back to the player id.
func DisplayNameFromClaims(claims jwt.MapClaims) string {
	name, _ := claims["name"].(string)
	return strings.TrimSpace(name)
}
