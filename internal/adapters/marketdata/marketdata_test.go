package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptRand struct {
	floats []float64
	fi     int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *scriptRand) IntN(n int) int { return 0 }

func testBasePrices() map[string]float64 {
	return map[string]float64{"BTC": 67000, "ETH": 2650, "BNB": 580}
}

func TestSynthetic_WalksAllSymbols(t *testing.T) {
	s := NewSynthetic(testBasePrices(), &scriptRand{})
	snapshot := s.GetCurrentPrices(context.Background())

	require.Len(t, snapshot.Quotes, 3)
	for sym, base := range testBasePrices() {
		q, ok := snapshot.Quotes[sym]
		require.True(t, ok, sym)
		assert.Greater(t, q.Price, base*0.94)
		assert.Less(t, q.Price, base*1.06)
	}
	assert.False(t, snapshot.Timestamp.IsZero())
}

func TestSynthetic_WalkContinuesFromLastQuote(t *testing.T) {
	// Draw 0.999 pushes the price up almost the full step each refresh.
	s := NewSynthetic(map[string]float64{"BTC": 1000}, &scriptRand{floats: []float64{0.999}})
	ctx := context.Background()

	first := s.GetCurrentPrices(ctx).Quotes["BTC"].Price
	second := s.GetCurrentPrices(ctx).Quotes["BTC"].Price
	assert.Greater(t, second, first)
}

const geckoPayload = `{
	"bitcoin":     {"usd": 67123.5, "usd_24h_change": 2.4, "usd_24h_vol": 30000000000},
	"ethereum":    {"usd": 2651.2, "usd_24h_change": -1.1, "usd_24h_vol": 12000000000},
	"binancecoin": {"usd": 581.0, "usd_24h_change": 0.3, "usd_24h_vol": 900000000}
}`

func TestCoinGecko_FetchesAndMapsQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("ids"), "bitcoin")
		w.Write([]byte(geckoPayload))
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, NewSynthetic(testBasePrices(), &scriptRand{}))
	snapshot := c.GetCurrentPrices(context.Background())

	require.Len(t, snapshot.Quotes, 3)
	btc := snapshot.Quotes["BTC"]
	assert.InDelta(t, 67123.5, btc.Price, 0.001)
	assert.InDelta(t, 2.4, btc.Change24h, 0.001)
	assert.InDelta(t, 0.024, btc.Volatility, 0.0001)

	eth := snapshot.Quotes["ETH"]
	assert.InDelta(t, 0.011, eth.Volatility, 0.0001) // magnitude of the change
}

func TestCoinGecko_ServesCacheWithoutRefetching(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(geckoPayload))
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, NewSynthetic(testBasePrices(), &scriptRand{}))
	ctx := context.Background()

	c.GetCurrentPrices(ctx)
	c.GetCurrentPrices(ctx)
	assert.Equal(t, 1, calls)
}

func TestCoinGecko_FallsBackOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, NewSynthetic(testBasePrices(), &scriptRand{}))
	snapshot := c.GetCurrentPrices(context.Background())

	// Synthetic fallback still serves every symbol.
	require.Len(t, snapshot.Quotes, 3)
	assert.Greater(t, snapshot.Quotes["BTC"].Price, 0.0)
}

func TestCoinGecko_FallsBackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin": {"usd": 1}}`)) // missing coins
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, NewSynthetic(testBasePrices(), &scriptRand{}))
	snapshot := c.GetCurrentPrices(context.Background())
	require.Len(t, snapshot.Quotes, 3)
}
