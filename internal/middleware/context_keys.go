package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = contextKey("userID")
const companyIDKey = contextKey("companyID")

// ActorHeaders maps the calling workflow's identity headers into the Gin
// context. Authentication itself is an external collaborator; this backend
// trusts the X-User-ID and X-Company-ID headers set by the gateway in front
// of it.
func ActorHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing X-User-ID header"})
			return
		}
		c.Set(string(userIDKey), userID)

		if companyID := c.GetHeader("X-Company-ID"); companyID != "" {
			c.Set(string(companyIDKey), companyID)
		}
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}

// GetCompanyIDFromContext retrieves the acting company ID, preferring the
// header-level value and falling back to the :companyID path parameter.
func GetCompanyIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(companyIDKey)); exists {
		if companyID, ok := v.(string); ok && companyID != "" {
			return companyID, true
		}
	}
	if companyID := c.Param("companyID"); companyID != "" {
		return companyID, true
	}
	return "", false
}
