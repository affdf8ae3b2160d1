package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "pagevault.userID"
	userEmailKey = "pagevault.userEmail"

	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
)

// Identity trusts the authentication proxy in front of this service and takes
// the caller's identity from its headers. Requests that reach us without an
// identity are rejected; authentication itself happens upstream.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.GetHeader(headerUserID), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "data": "authentication required"})
			return
		}
		c.Set(userIDKey, uint(id))
		c.Set(userEmailKey, c.GetHeader(headerUserEmail))
		c.Next()
	}
}

// UserID returns the authenticated user id, 0 when unauthenticated.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserEmail returns the authenticated user's email, if the proxy supplied one.
func UserEmail(c *gin.Context) string {
	if v, ok := c.Get(userEmailKey); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}
