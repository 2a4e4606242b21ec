package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library

	"btcwallet/internal/domain" // Domain models
	"btcwallet/internal/store"  // Store interfaces
	"btcwallet/internal/utils"  // API key utilities
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"` // Registration email
}

// RegisterHandler registers a new user and issues their api key
func RegisterHandler(users store.UserStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "A valid email is required"}})
			return
		}
		// Lowercase the email so uniqueness is case-insensitive
		user := domain.NewUser(strings.ToLower(req.Email))
		if err := users.AddUser(c.Request.Context(), user); err != nil {
			respondError(c, err) // Duplicate email maps to 409
			return
		}
		apiKey, err := utils.MintAPIKey(user.ID, secret)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   user.Email,
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"user": user, "api_key": apiKey})
	}
}
