package middleware

import (
	"crypto/subtle"
	"net/http"

	"restaurant-platform-api/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header names shared with the frontend.
const (
	AdminKeyHeader     = "X-API-Key"
	VisitorTokenHeader = "X-Visitor-Token"
)

// AdminRequired validates the shared admin secret. Missing key is 401,
// mismatched key is 403. Comparison is constant-time.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		serverKey := config.App.AdminAPIKey
		if serverKey == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Admin API key not configured"})
			c.Abort()
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing API key"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(serverKey)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// VisitorTokenOptional parses the visitor token header if present and
// well-formed. It never writes a response.
func VisitorTokenOptional(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(VisitorTokenHeader)
	if raw == "" {
		return uuid.Nil, false
	}
	token, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return token, true
}

// VisitorTokenRequired parses the visitor token header and answers 422
// when it is missing or malformed. Callers must return on ok=false.
func VisitorTokenRequired(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(VisitorTokenHeader)
	if raw == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "X-Visitor-Token header required"})
		return uuid.Nil, false
	}
	token, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid visitor token"})
		return uuid.Nil, false
	}
	return token, true
}
