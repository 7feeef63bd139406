// Package identity verifies tokens issued by the external identity
// provider. The provider owns signup, sessions and credential checks;
// billcraft only validates the token signature and extracts the owner
// identifier, which every record is partitioned by.
package identity

import (
	"errors"
	"strings"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingOwner = errors.New("missing subject in claims")
)

// Claims carries the subset of provider claims billcraft cares about.
type Claims struct {
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens from the identity provider.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg config.Config) *Verifier {
	return &Verifier{
		secret: []byte(cfg.AuthJWTSecret),
		issuer: cfg.AuthJWTIssuer,
	}
}

// VerifyToken validates the raw token and returns the owner identifier
// from the subject claim. The identifier is treated as opaque.
func (v *Verifier) VerifyToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return "", ErrInvalidToken
	}

	owner := strings.TrimSpace(claims.Subject)
	if owner == "" {
		return "", ErrMissingOwner
	}
	return owner, nil
}
