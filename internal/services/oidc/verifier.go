package oidc

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/holthoefer/qmflow/internal/models"
)

// Verifier verifies bearer tokens against the configured issuer and JWKS URL
type Verifier struct {
	jwksManager *JWKSManager
	issuer      string
	jwksURL     string
}

// NewVerifier creates a new JWT verifier
func NewVerifier(jwksManager *JWKSManager, issuer, jwksURL string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		issuer:      issuer,
		jwksURL:     jwksURL,
	}
}

// Verify parses and verifies a token, returning the extracted claims.
// The admin custom claim is carried as a routing hint only; the stored
// profile role stays authoritative for gating.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString), jwt.WithKeySet(keys), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	iss, ok := token.Get("iss")
	if !ok {
		return nil, fmt.Errorf("token missing issuer claim")
	}
	if issStr, ok := iss.(string); !ok || issStr != v.issuer {
		return nil, fmt.Errorf("token issuer mismatch: expected %s, got %v", v.issuer, iss)
	}

	return extractClaims(token), nil
}

func extractClaims(token jwt.Token) *models.JWTClaims {
	claims := &models.JWTClaims{}

	claims.Sub = stringClaim(token, "sub")
	claims.Email = stringClaim(token, "email")
	claims.Iss = stringClaim(token, "iss")
	claims.EmailVerified = boolClaim(token, "email_verified")
	claims.Admin = boolClaim(token, "admin")

	if exp, ok := token.Get("exp"); ok {
		if t, ok := exp.(float64); ok {
			claims.Exp = int64(t)
		}
	}
	if iat, ok := token.Get("iat"); ok {
		if t, ok := iat.(float64); ok {
			claims.Iat = int64(t)
		}
	}
	if aud, ok := token.Get("aud"); ok {
		if audStr, ok := aud.(string); ok {
			claims.Aud = audStr
		} else if audArr, ok := aud.([]any); ok && len(audArr) > 0 {
			if audStr, ok := audArr[0].(string); ok {
				claims.Aud = audStr
			}
		}
	}

	return claims
}

func stringClaim(token jwt.Token, name string) string {
	if v, ok := token.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// boolClaim tolerates providers that encode boolean claims as strings
func boolClaim(token jwt.Token, name string) bool {
	v, ok := token.Get(name)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}
