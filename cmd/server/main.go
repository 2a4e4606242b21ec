package main

import (
	"context"  // context package is needed for Redis operations
	"log"      // log package is needed for logging
	"net/http" // HTTP status codes

	"btcwallet/internal/api"        // Custom package for API handlers
	"btcwallet/internal/config"     // Custom package for configuration
	"btcwallet/internal/ledger"     // Custom package for the wallet ledger
	"btcwallet/internal/middleware" // Custom package for middleware
	"btcwallet/internal/rates"      // Custom package for the price oracle
	"btcwallet/internal/store"      // Custom package for storage

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
	"github.com/sirupsen/logrus"                              // Logrus for structured logging
	"gorm.io/driver/mysql"                                    // MySQL driver for GORM
	"gorm.io/gorm"                                            // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// The signing secret and admin key have no safe defaults
	if cfg.APIKeySecret == "" {
		logrus.Fatal("API_KEY_SECRET must be set")
	}
	if cfg.AdminAPIKey == "" {
		logrus.Fatal("ADMIN_API_KEY must be set")
	}

	// Connect to the database; TranslateError lets the store detect
	// duplicate-key violations portably
	gormDB, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire services: one store behind three capability interfaces
	st := store.NewGormStore(gormDB)
	walletLedger := ledger.New(st, st, st, ledger.Config{
		FeeRate:            cfg.FeeRate,
		WalletLimit:        cfg.WalletLimit,
		StartingBalanceBTC: cfg.StartingBalanceBTC,
	})
	statsReader := ledger.NewStatisticsReader(cfg.AdminAPIKey, st)
	oracle := rates.New(cfg.RateAPIURL, redisClient, cfg.RateCacheTTL)

	// Setup Gin
	r := gin.Default()

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	r.Use(api.MetricsMiddleware())

	// Open routes
	r.POST("/users", api.RegisterHandler(st, cfg.APIKeySecret)) // Registration endpoint
	r.GET("/statistics", api.StatisticsHandler(statsReader))    // Admin statistics endpoint
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Wallet and transaction routes (protected by api key)
	authed := r.Group("/")
	authed.Use(middleware.APIKeyAuth(cfg.APIKeySecret, st))
	authed.POST("/wallets", api.CreateWalletHandler(walletLedger, oracle))                    // Create wallet endpoint
	authed.GET("/wallets", api.ListWalletsHandler(walletLedger, oracle))                      // List own wallets endpoint
	authed.GET("/wallets/:id", api.GetWalletHandler(walletLedger, oracle, redisClient))       // Get wallet endpoint
	authed.GET("/wallets/:id/transactions", api.WalletTransactionsHandler(walletLedger, redisClient)) // Wallet history endpoint
	authed.POST("/transactions", api.TransferHandler(walletLedger, redisClient))              // Transfer endpoint
	authed.GET("/transactions", api.ListUserTransactionsHandler(walletLedger))                // User history endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
