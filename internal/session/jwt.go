package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"queryosity/pkg/models"
)

// TokenService signs the session cookie.
type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewSessionID mints a random session id.
func NewSessionID() string {
	return uuid.NewString()
}

func (ts TokenService) Sign(sessionID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ts.Duration)

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return s, exp, nil
}

func (ts TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := parseHS256(tokenString, ts.Secret, ts.Issuer, claims); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("parse session: empty session id")
	}
	return claims, nil
}

// NavClaims carry a wizard navigation payload. The token id doubles as the
// key of the destination page's working set.
type NavClaims struct {
	Bundle models.Bundle `json:"state"`
	jwt.RegisteredClaims
}

// NavCodec encodes navigation payloads into URL-safe signed tokens.
type NavCodec struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
}

func (nc NavCodec) Encode(b models.Bundle) (string, error) {
	now := time.Now()
	claims := NavClaims{
		Bundle: b,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    nc.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(nc.Duration)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(nc.Secret)
	if err != nil {
		return "", fmt.Errorf("encode navigation state: %w", err)
	}
	return s, nil
}

func (nc NavCodec) Decode(token string) (*NavClaims, error) {
	claims := &NavClaims{}
	if err := parseHS256(token, nc.Secret, nc.Issuer, claims); err != nil {
		return nil, fmt.Errorf("decode navigation state: %w", err)
	}
	return claims, nil
}

func parseHS256(tokenString string, secret []byte, issuer string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return err
	}
	if !tok.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}
