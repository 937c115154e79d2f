// Package auth validates access tokens issued by the identity service.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gstreco/internal/config"
	"gstreco/internal/domain"
)

// AccessAudience is the audience every accepted token must carry.
const AccessAudience = "access"

// Claims represents the JWT claims with tenant context.
type Claims struct {
	jwt.RegisteredClaims
	TenantID uuid.UUID       `json:"tenant_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
}

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates an HS256 validator for cfg.
func NewTokenValidator(cfg *config.JWTConfig) TokenValidator {
	return &tokenValidator{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

func (v *tokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithAudience(AccessAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid || claims.TenantID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
