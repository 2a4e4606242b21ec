package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Wallet identifiers
	"github.com/redis/go-redis/v9" // Redis client

	"btcwallet/internal/domain" // Domain models
	"btcwallet/internal/ledger" // Wallet ledger service
	"btcwallet/internal/utils"  // Cache utilities
)

// TransferRequest represents a transfer request
type TransferRequest struct {
	FromID string  `json:"from_id" binding:"required"`     // Sender wallet id
	ToID   string  `json:"to_id" binding:"required"`       // Recipient wallet id
	Amount float64 `json:"amount" binding:"required,gt=0"` // Amount to send in bitcoin
}

// TransferHandler moves bitcoin between two wallets. The acting user must
// own the sending wallet; the ledger enforces everything else.
func TransferHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUser(c)
		if !ok {
			respondUnauthorized(c)
			return
		}
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		fromID, err := uuid.Parse(req.FromID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid from_id"}})
			return
		}
		toID, err := uuid.Parse(req.ToID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid to_id"}})
			return
		}
		ctx := c.Request.Context()
		// Only the owner may spend from a wallet
		if err := l.WalletOwnerMatches(ctx, userID, fromID); err != nil {
			respondError(c, err)
			return
		}
		t, err := l.Transfer(ctx, fromID, toID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		// Both balances changed; drop their cached copies
		utils.InvalidateWallet(ctx, rdb, fromID)
		utils.InvalidateWallet(ctx, rdb, toID)
		c.JSON(http.StatusCreated, gin.H{"transaction": t})
	}
}

// ListUserTransactionsHandler returns every transaction touching any wallet
// of the acting user
func ListUserTransactionsHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUser(c)
		if !ok {
			respondUnauthorized(c)
			return
		}
		txs, err := l.UserTransactions(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		if txs == nil {
			txs = []domain.Transaction{} // No history yet is still a 200
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs})
	}
}
