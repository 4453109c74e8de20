package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/blacksultan/sultand/internal/domain"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	requestTimeout = 10 * time.Second
	cacheDuration  = 30 * time.Second

	// CoinGecko free tier tolerates roughly 30 req/min; stay well under.
	requestsPerSec = 0.5
)

// coinIDs maps dashboard symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"BNB": "binancecoin",
}

// CoinGecko fetches real prices with its own rate limiting and caching, and
// degrades to the synthetic walk on any upstream failure. The scheduler
// never sees an error from it.
type CoinGecko struct {
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	fallback *Synthetic

	mu       sync.Mutex
	cached   domain.MarketSnapshot
	cachedAt time.Time
}

// NewCoinGecko creates the client. baseURL overrides the public API host,
// mainly for tests; empty means the real endpoint.
func NewCoinGecko(baseURL string, fallback *Synthetic) *CoinGecko {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CoinGecko{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: requestTimeout},
		limiter:  rate.NewLimiter(requestsPerSec, 1),
		fallback: fallback,
	}
}

// GetCurrentPrices returns the cached snapshot while fresh, otherwise
// refreshes from the API, otherwise falls back to a synthetic snapshot.
func (c *CoinGecko) GetCurrentPrices(ctx context.Context) domain.MarketSnapshot {
	c.mu.Lock()
	if !c.cachedAt.IsZero() && time.Since(c.cachedAt) < cacheDuration {
		snapshot := c.cached
		c.mu.Unlock()
		return snapshot
	}
	c.mu.Unlock()

	snapshot, err := c.fetch(ctx)
	if err != nil {
		slog.Warn("price fetch failed, using synthetic prices", "err", err)
		return c.fallback.GetCurrentPrices(ctx)
	}

	c.mu.Lock()
	c.cached = snapshot
	c.cachedAt = time.Now()
	c.mu.Unlock()
	return snapshot
}

func (c *CoinGecko) fetch(ctx context.Context) (domain.MarketSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("marketdata.fetch: limiter: %w", err)
	}

	ids := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		ids = append(ids, id)
	}
	query := url.Values{
		"ids":                 {strings.Join(ids, ",")},
		"vs_currencies":       {"usd"},
		"include_24hr_change": {"true"},
		"include_24hr_vol":    {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/simple/price?"+query.Encode(), nil)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("marketdata.fetch: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("marketdata.fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.MarketSnapshot{}, fmt.Errorf("marketdata.fetch: status %d", resp.StatusCode)
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("marketdata.fetch: decode: %w", err)
	}

	quotes := make(map[string]domain.Quote, len(coinIDs))
	for sym, id := range coinIDs {
		coin, ok := payload[id]
		if !ok {
			return domain.MarketSnapshot{}, fmt.Errorf("marketdata.fetch: missing coin %q", id)
		}
		change := coin["usd_24h_change"]
		vol := change / 100
		if vol < 0 {
			vol = -vol
		}
		if vol > 1 {
			vol = 1
		}
		quotes[sym] = domain.Quote{
			Price:      coin["usd"],
			Change24h:  change,
			Volume24h:  coin["usd_24h_vol"],
			Volatility: vol,
		}
	}
	return domain.MarketSnapshot{Quotes: quotes, Timestamp: time.Now().UTC()}, nil
}
