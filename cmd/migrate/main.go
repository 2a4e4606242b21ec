package main

import (
	"btcwallet/internal/config" // Custom import path (Config)
	"btcwallet/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Create the users, wallets and transactions tables
}
