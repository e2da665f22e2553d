package models

// JWTClaims represents the claims extracted from a verified bearer token.
// Admin is the provider's custom claim; the stored profile role remains
// authoritative for UI gating.
type JWTClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Admin         bool   `json:"admin"`
	Exp           int64  `json:"exp"`
	Iat           int64  `json:"iat"`
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
}

// Identity converts claims to the identity consumed by the profile lifecycle
func (c *JWTClaims) Identity() Identity {
	return Identity{
		UID:           c.Sub,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		AdminClaim:    c.Admin,
	}
}
