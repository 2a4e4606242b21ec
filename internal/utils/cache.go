package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // String conversion
	"time"          // Time durations

	"github.com/google/uuid"       // Wallet identifiers
	"github.com/redis/go-redis/v9" // Redis client
)

// historyPagesInvalidated bounds how many cached history pages a write
// invalidates; pages past this simply age out with their TTL
const historyPagesInvalidated = 5

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client behaves as an always-empty cache.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err()
}

// WalletKey is the cache key for a single wallet record
func WalletKey(walletID uuid.UUID) string {
	return "wallet:" + walletID.String()
}

// HistoryKey is the cache key for one page of a wallet's history
func HistoryKey(walletID uuid.UUID, page, pageSize int) string {
	return "txhistory:wallet:" + walletID.String() +
		":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// InvalidateWallet drops the wallet's cached record and its first cached
// history pages after a balance change
func InvalidateWallet(ctx context.Context, rdb *redis.Client, walletID uuid.UUID) {
	_ = DeleteCache(ctx, rdb, WalletKey(walletID))
	for page := 1; page <= historyPagesInvalidated; page++ {
		_ = DeleteCache(ctx, rdb, HistoryKey(walletID, page, 20))
	}
}
