package jwt

import (
	"errors"
	"fmt"
	gojwt "github.com/golang-jwt/jwt/v5"
	"time"
)

const (
	// AlgHS256 is the HMAC256 algorithm
	AlgHS256 = "HS256"
)

const (
	// TokenTypeAccess a access token
	TokenTypeAccess string = "access_token"

	// TokenTypeRefresh a refresh token
	TokenTypeRefresh string = "refresh_token"
)

// Issuer is written into every token this service signs
const Issuer = "tracktivity"

// RefreshTokenLifetime is how long a refresh token stays valid
const RefreshTokenLifetime = 30 * 24 * time.Hour

// Claims our JWT can have
type Claims struct {
	TokenType string `json:"tkt,omitempty"`
	gojwt.RegisteredClaims
}

// Token is a parsed and verified token
type Token struct {
	Algorithm string
	Payload   Claims
}

// NewClaims builds claims for subject that expire after lifetime, zero meaning no expiry
func NewClaims(subject string, tokenType string, lifetime time.Duration, now time.Time) Claims {
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:  subject,
			Issuer:   Issuer,
			IssuedAt: gojwt.NewNumericDate(now),
		},
	}

	if lifetime > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(lifetime))
	}

	return claims
}

// New constructs a new token
func New(algorithm string, payload Claims) Token {
	return Token{Algorithm: algorithm, Payload: payload}
}

// Sign returns the signed token
func (t *Token) Sign(secret string) (string, error) {
	if t.Algorithm != AlgHS256 {
		return "", fmt.Errorf("unsupported algorithm %s", t.Algorithm)
	}

	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, t.Payload).SignedString([]byte(secret))
}

// Verify checks signature, expiry and token type of a token string
func Verify(token string, tokenType string, secret string, algorithm string) (*Token, error) {
	if token == "" {
		return nil, errors.New("token is empty")
	}

	claims := Claims{}
	_, err := gojwt.ParseWithClaims(token, &claims, func(t *gojwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, gojwt.WithValidMethods([]string{algorithm}), gojwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	if tokenType != "" && claims.TokenType != tokenType {
		return nil, errors.New("wrong token type")
	}

	decoded := New(algorithm, claims)

	return &decoded, nil
}
