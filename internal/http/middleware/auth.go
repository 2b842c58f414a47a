package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/mms-documents/internal/model"
)

const principalContextKey = "principal"

type TokenParser interface {
	Parse(token string) (model.Principal, error)
}

// OptionalAuth attaches the bearer token's principal when one verifies.
// Requests without a valid token continue anonymously.
func OptionalAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || parser == nil {
			c.Next()
			return
		}
		if principal, err := parser.Parse(token); err == nil {
			c.Set(principalContextKey, principal)
		}
		c.Next()
	}
}

// PrincipalFrom returns the request principal, or the anonymous one.
func PrincipalFrom(c *gin.Context) model.Principal {
	value, ok := c.Get(principalContextKey)
	if !ok {
		return model.Principal{}
	}
	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}
	}
	return principal
}
