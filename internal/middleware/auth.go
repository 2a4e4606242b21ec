package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"btcwallet/internal/store" // Store interfaces
	"btcwallet/internal/utils" // API key utilities
)

// APIKeyAuth resolves the X-API-Key header to the acting user and stores the
// user id in the gin context for downstream handlers
func APIKeyAuth(secret string, users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Missing X-API-Key header"}})
			return
		}
		userID, err := utils.ParseAPIKey(apiKey, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid api key"}})
			return
		}
		// The key must still name a registered user
		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid api key"}})
			return
		}
		c.Set("userID", user.ID) // Store acting user in context
		c.Next()
	}
}
