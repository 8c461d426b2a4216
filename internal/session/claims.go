package session

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry peeks at the current token's exp claim without verifying the
// signature; the server stays authoritative, this only feeds the "session
// expires at" display. Returns false for no token, opaque tokens, or tokens
// without an exp claim.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
