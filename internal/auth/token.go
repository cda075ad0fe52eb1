package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Token is a signed bearer token together with its validity window.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 bearer tokens with a fixed signing key.
// The key is copied at construction and never changes afterwards.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewTokenManager builds a TokenManager signing with secret and issuing tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	m := &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		nowFunc: time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return m.nowFunc() }),
	)
	return m
}

// Issue mints a token whose subject is the user's name.
func (m *TokenManager) Issue(user models.User) (Token, error) {
	if strings.TrimSpace(user.Name) == "" {
		return Token{}, fmt.Errorf("issue token: empty subject")
	}

	now := m.nowFunc().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.Name,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Value: signed, IssuedAt: now, ExpiresAt: expiresAt}, nil
}

// Verify checks structure, signature and expiry and returns the token subject.
func (m *TokenManager) Verify(tokenString string) (Principal, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Principal{}, ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return Principal{}, classifyTokenError(tokenString, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Principal{}, ErrMalformedToken
	}

	return Principal{Name: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func classifyTokenError(tokenString string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		if signatureUndecodable(tokenString) {
			return ErrInvalidSignature
		}
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

// signatureUndecodable reports whether header and claims are well formed
// while the signature segment fails strict base64url decoding.
func signatureUndecodable(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts[:2] {
		raw, err := base64.RawURLEncoding.Strict().DecodeString(part)
		if err != nil || !json.Valid(raw) {
			return false
		}
	}
	_, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	return err != nil
}
