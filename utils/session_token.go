package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The session cookie does not carry identity. It carries an HS256
// token wrapping the server-side session id, so a tampered cookie is
// rejected before the store is ever consulted.

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SignSessionID wraps a session id in a signed token for cookie transport.
func SignSessionID(secret, sid string, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionID validates a cookie token and returns the session id inside.
func ParseSessionID(secret, tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SID, nil
}
