package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "guardian/pkg/domain-errors"
)

// TokenInfo is what can be read from an access token without the signing key.
type TokenInfo struct {
	Subject   string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an expiry before now. Tokens
// without an expiry never report expired.
func (i *TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// InspectAccessToken reads the registered claims of a JWT access token
// without verifying its signature. It is for display only; the backend
// remains the authority on whether a token is still accepted.
func InspectAccessToken(token string) (*TokenInfo, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.New(dErrors.CodeParse, "empty access token")
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeParse, "access token is not a JWT")
	}

	info := &TokenInfo{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		info.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		info.ExpiresAt = &t
	}
	return info, nil
}
