package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueCredential means the credential is not a JWT, or there is none.
var ErrOpaqueCredential = errors.New("session: credential is not a JWT")

// Claims is what the client can read out of its own credential without the
// issuer's key. Informational only; nothing here is verified.
type Claims struct {
	Subject   string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the credential carries an expiry before now.
// Credentials without an exp claim never expire client-side.
func (c Claims) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type credentialClaims struct {
	jwt.RegisteredClaims

	Username string `json:"username,omitempty"`
}

// Claims decodes the stored credential as an unverified JWT.
func (s *Store) Claims() (Claims, error) {
	return ParseClaims(s.Credential())
}

// ParseClaims decodes token without verifying its signature.
func ParseClaims(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrOpaqueCredential
	}

	var cc credentialClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &cc); err != nil {
		return Claims{}, ErrOpaqueCredential
	}

	out := Claims{
		Subject:  cc.Subject,
		Username: cc.Username,
	}
	if cc.IssuedAt != nil {
		out.IssuedAt = cc.IssuedAt.Time
	}
	if cc.ExpiresAt != nil {
		out.ExpiresAt = cc.ExpiresAt.Time
	}
	if out.Username == "" {
		out.Username = out.Subject
	}
	return out, nil
}
