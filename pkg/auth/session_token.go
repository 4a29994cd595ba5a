package auth

import (
	"fmt"
	"strings"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// SessionTokenClaims carries the App Bridge session token payload. Shopify
// signs these with the app's API secret; `dest` names the shop the request
// was issued for.
type SessionTokenClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// ShopDomain extracts the bare shop domain from the dest claim.
func (c SessionTokenClaims) ShopDomain() string {
	dest := strings.TrimSpace(c.Dest)
	dest = strings.TrimPrefix(dest, "https://")
	dest = strings.TrimPrefix(dest, "http://")
	return strings.TrimSuffix(dest, "/")
}

// ParseSessionToken validates an embedded-app session token and returns the
// typed claims. Audience is checked against the app API key when configured.
func ParseSessionToken(cfg config.ShopifyConfig, tokenString string) (*SessionTokenClaims, error) {
	if cfg.AppAPISecret == "" {
		return nil, fmt.Errorf("shopify app api secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
	}
	if cfg.AppAPIKey != "" {
		opts = append(opts, jwt.WithAudience(cfg.AppAPIKey))
	}

	claims := &SessionTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.AppAPISecret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	if claims.ShopDomain() == "" {
		return nil, fmt.Errorf("session token missing dest claim")
	}

	return claims, nil
}
