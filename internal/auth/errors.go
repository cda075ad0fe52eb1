package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when authentication fails, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrPasswordTooLong is returned for secrets longer than bcrypt accepts.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

	// ErrMissingToken means no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrMalformedToken means the token is not a well-formed signed token.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature means the token signature does not match the signing key.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired means the token validity window has elapsed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenErrorKind returns a stable identifier for a route guard failure.
func TokenErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed_token"
	}
}
