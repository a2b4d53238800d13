package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abrigo/intake/internal/platform/session"
)

// Claims is the gateway-issued token payload. The token only carries the
// session id and role; everything sensitive (upstream bearer token, CSRF
// token) stays server-side in the session store.
type Claims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken mints an HS256 token bound to a gateway session.
func IssueToken(secret []byte, s *session.Session, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: s.ID(),
		Role:      s.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Identity().Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
