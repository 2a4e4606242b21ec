package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"btcwallet/internal/domain"
)

// StatusUpstreamQuoteFailed reports a price-feed failure that the caller
// chose to surface; it is deliberately outside the 5xx range the ledger uses
const StatusUpstreamQuoteFailed = 599

// respondError translates the domain error taxonomy into an HTTP status and
// the error envelope. Anything unclassified is a storage-layer fault: logged
// and masked as a 500.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err.Error(),
		}).Error("Request failed")
		message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": gin.H{"message": message}})
}

// statusFor maps a domain error to its status code
func statusFor(err error) int {
	var (
		notFound   *domain.NotFoundError
		wrongOwner *domain.WrongOwnerError
		selfXfer   *domain.SelfTransferError
		capHit     *domain.WalletLimitError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &wrongOwner), errors.As(err, &selfXfer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.As(err, &capHit), errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrQuoteUnavailable):
		return StatusUpstreamQuoteFailed
	default:
		return http.StatusInternalServerError
	}
}

// actingUser pulls the authenticated user id set by the auth middleware
func actingUser(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// respondUnauthorized is the fallback when a handler runs without the auth
// middleware having set the acting user
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
}
