package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Wallet identifiers
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library

	"btcwallet/internal/domain" // Domain models
	"btcwallet/internal/ledger" // Wallet ledger service
	"btcwallet/internal/rates"  // Price oracle
	"btcwallet/internal/utils"  // Cache utilities
)

// walletView is the wallet representation returned over HTTP. BalanceUSD is
// best effort: nil when the price feed cannot produce a quote, because a
// quote failure must never hide the correct bitcoin balance.
type walletView struct {
	WalletID   uuid.UUID `json:"wallet_id"`   // Wallet identifier
	OwnerID    uuid.UUID `json:"owner_id"`    // Owning user
	BalanceBTC float64   `json:"balance_btc"` // Balance in bitcoin
	BalanceSat int64     `json:"balance_sat"` // Balance in satoshi
	BalanceUSD *float64  `json:"balance_usd"` // USD estimate, null when the quote failed
}

// viewWallet shapes a wallet for a response, attaching the USD estimate when
// the oracle can produce one
func viewWallet(c *gin.Context, oracle *rates.Oracle, w *domain.Wallet) walletView {
	view := walletView{
		WalletID:   w.ID,
		OwnerID:    w.OwnerID,
		BalanceBTC: w.BalanceBTC,
		BalanceSat: rates.BTCToSat(w.BalanceBTC),
	}
	usd, err := oracle.BTCToUSD(c.Request.Context(), w.BalanceBTC)
	if err != nil {
		// Degrade, don't fail: the ledger answer is still correct
		logrus.WithFields(logrus.Fields{
			"wallet_id": w.ID,
			"error":     err.Error(),
		}).Warn("USD quote unavailable")
		return view
	}
	view.BalanceUSD = &usd
	return view
}

// CreateWalletHandler opens a wallet for the acting user
func CreateWalletHandler(l *ledger.Ledger, oracle *rates.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUser(c)
		if !ok {
			respondUnauthorized(c)
			return
		}
		wallet, err := l.CreateWallet(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err) // Wallet cap maps to 409
			return
		}
		c.JSON(http.StatusCreated, gin.H{"wallet": viewWallet(c, oracle, wallet)})
	}
}

// ListWalletsHandler returns every wallet of the acting user
func ListWalletsHandler(l *ledger.Ledger, oracle *rates.Oracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUser(c)
		if !ok {
			respondUnauthorized(c)
			return
		}
		wallets, err := l.UserWallets(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		views := make([]walletView, 0, len(wallets))
		for i := range wallets {
			views = append(views, viewWallet(c, oracle, &wallets[i]))
		}
		c.JSON(http.StatusOK, gin.H{"wallets": views})
	}
}

// GetWalletHandler returns one wallet with its BTC balance and USD estimate;
// only the owner may read it
func GetWalletHandler(l *ledger.Ledger, oracle *rates.Oracle, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUser(c)
		if !ok {
			respondUnauthorized(c)
			return
		}
		walletID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid wallet id"}})
			return
		}
		ctx := c.Request.Context()
		var wallet domain.Wallet
		cached, err := utils.GetCache(ctx, rdb, utils.WalletKey(walletID), &wallet)
		if err != nil || !cached {
			fresh, err := l.GetWallet(ctx, walletID)
			if err != nil {
				respondError(c, err)
				return
			}
			wallet = *fresh
			_ = utils.SetCache(ctx, rdb, utils.WalletKey(walletID), wallet, 60*time.Second)
		}
		// Ownership is enforced on the cached copy too
		if wallet.OwnerID != userID {
			respondError(c, &domain.WrongOwnerError{OwnerID: userID, WalletID: walletID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": viewWallet(c, oracle, &wallet), "cached": cached})
	}
}

// WalletTransactionsHandler returns the paginated history of one wallet
func WalletTransactionsHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUser(c)
		if !ok {
			respondUnauthorized(c)
			return
		}
		walletID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid wallet id"}})
			return
		}
		ctx := c.Request.Context()
		if err := l.WalletOwnerMatches(ctx, userID, walletID); err != nil {
			respondError(c, err)
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v
			}
		}
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v
			}
		}
		cacheKey := utils.HistoryKey(walletID, page, pageSize)
		var cachedPage struct {
			Transactions []domain.Transaction `json:"transactions"`
			Page         int                  `json:"page"`
			PageSize     int                  `json:"page_size"`
			Total        int64                `json:"total"`
			TotalPages   int                  `json:"total_pages"`
		}
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cachedPage); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cachedPage.Transactions,
				"page":         cachedPage.Page,
				"page_size":    cachedPage.PageSize,
				"total":        cachedPage.Total,
				"total_pages":  cachedPage.TotalPages,
				"cached":       true,
			})
			return
		}
		txs, total, err := l.WalletTransactions(ctx, walletID, (page-1)*pageSize, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		if txs == nil {
			txs = []domain.Transaction{} // Empty history is a 200, not an error
		}
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": txs,
			"page":         page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  totalPages,
			"cached":       false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp)
	}
}
