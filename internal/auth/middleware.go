package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/abduss/flickpick/internal/metrics"
	"github.com/gin-gonic/gin"
)

type contextKey string

const principalContextKey contextKey = "flickpickPrincipal"

// Principal is the authenticated identity bound to a request.
type Principal struct {
	Name      string
	ExpiresAt time.Time
}

// tokenVerifier checks bearer tokens.
type tokenVerifier interface {
	Verify(tokenString string) (Principal, error)
}

// AuthMiddleware validates bearer tokens and injects the authenticated principal.
// It never touches the credential store.
func AuthMiddleware(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))

		principal, err := tokens.Verify(token)
		if err != nil {
			kind := TokenErrorKind(err)
			metrics.TokenRejected(kind)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": unauthorizedMessage(kind),
				"kind":  kind,
			})
			return
		}

		c.Set(string(principalContextKey), principal)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))

		c.Next()
	}
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}

// CurrentUser extracts the authenticated principal from the gin context.
func CurrentUser(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(string(principalContextKey))
	if !exists {
		return Principal{}, false
	}
	p, ok := value.(Principal)
	return p, ok
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func unauthorizedMessage(kind string) string {
	switch kind {
	case "missing_token":
		return "missing authorization header"
	case "token_expired":
		return "token expired"
	default:
		return "invalid token"
	}
}
