package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"btcwallet/internal/ledger" // Statistics reader
)

// StatisticsHandler returns the platform totals. The X-API-Key header must
// carry the admin secret itself, not a user api key.
func StatisticsHandler(reader *ledger.StatisticsReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := reader.Read(c.Request.Context(), c.GetHeader("X-API-Key"))
		if err != nil {
			respondError(c, err) // Wrong key maps to 403
			return
		}
		c.JSON(http.StatusOK, gin.H{"statistics": stats})
	}
}
