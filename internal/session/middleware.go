package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key under which the session claims are stored.
const ContextKey = "session"

// Middleware guards admin routes behind the session cookie.
func Middleware(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := Parse(token, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(ContextKey, claims)
		c.Next()
	}
}
