package device

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key under which the authenticated device is stored.
const ContextKey = "device"

// TokenSource resolves a bearer token to a device.
type TokenSource interface {
	ByToken(ctx context.Context, token string) (*Device, error)
}

// Auth enforces the device bearer-token scheme on the scan route. The stored
// token is compared by exact match; there is no expiry. On success the device
// is stored in the context and seen(deviceID) is invoked — the callback is
// expected to be best-effort and must not block the request.
func Auth(tokens TokenSource, seen func(deviceID string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		d, err := tokens.ByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if seen != nil {
			seen(d.ID)
		}
		c.Set(ContextKey, d)
		c.Next()
	}
}
