// Package rates adapts the external BTC price feed. A quote failure is never
// a ledger failure: callers get domain.ErrQuoteUnavailable and decide for
// themselves whether to degrade or fail.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"btcwallet/internal/domain"
	"btcwallet/internal/utils"
)

// SatoshiPerBTC is the number of satoshi in one bitcoin
const SatoshiPerBTC = 100_000_000

// rateCacheKey caches the fetched USD rate between requests
const rateCacheKey = "rate:btc:usd"

// Oracle fetches the BTC/USD rate from a CoinGecko-style simple/price
// endpoint, caching it in redis so bursts of wallet reads share one quote
type Oracle struct {
	apiURL string
	client *http.Client
	rdb    *redis.Client // nil disables caching
	ttl    time.Duration
}

// New builds an Oracle. The HTTP client carries its own timeout; the quote
// call must never hold a wallet lock, so nothing here touches the stores.
func New(apiURL string, rdb *redis.Client, ttl time.Duration) *Oracle {
	return &Oracle{
		apiURL: apiURL,
		client: &http.Client{Timeout: 5 * time.Second},
		rdb:    rdb,
		ttl:    ttl,
	}
}

// USDRate returns the current USD price of one bitcoin
func (o *Oracle) USDRate(ctx context.Context) (float64, error) {
	if o.rdb != nil {
		var cached float64
		if found, err := utils.GetCache(ctx, o.rdb, rateCacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}
	rate, err := o.fetch(ctx)
	if err != nil {
		return 0, err
	}
	if o.rdb != nil {
		if err := utils.SetCache(ctx, o.rdb, rateCacheKey, rate, o.ttl); err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to cache BTC/USD rate")
		}
	}
	return rate, nil
}

// BTCToUSD converts a bitcoin amount to its USD estimate
func (o *Oracle) BTCToUSD(ctx context.Context, btc float64) (float64, error) {
	rate, err := o.USDRate(ctx)
	if err != nil {
		return 0, err
	}
	return btc * rate, nil
}

// BTCToSat converts a bitcoin amount to whole satoshi
func BTCToSat(btc float64) int64 {
	return int64(math.Round(btc * SatoshiPerBTC))
}

// fetch performs the upstream call. Any non-200 response, transport error or
// malformed body collapses into domain.ErrQuoteUnavailable.
func (o *Oracle) fetch(ctx context.Context) (float64, error) {
	u, err := url.Parse(o.apiURL)
	if err != nil {
		return 0, fmt.Errorf("%w: bad feed url: %v", domain.ErrQuoteUnavailable, err)
	}
	q := u.Query()
	q.Set("ids", "bitcoin")
	q.Set("vs_currencies", "usd")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: feed returned %d", domain.ErrQuoteUnavailable, resp.StatusCode)
	}
	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	rate, ok := body["bitcoin"]["usd"]
	if !ok {
		return 0, fmt.Errorf("%w: rate missing from response", domain.ErrQuoteUnavailable)
	}
	return rate, nil
}
