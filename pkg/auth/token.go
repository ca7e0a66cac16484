package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/calebmorris/cartly-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ParseAccessToken validates a provider-issued JWT against the project's
// signing secret and expected issuer, returning typed claims.
func ParseAccessToken(cfg config.SupabaseConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer()),
	)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// TokenDigest returns a hex SHA-256 of the raw token, used as the cache key
// for verified identities so raw tokens never land in Redis.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
