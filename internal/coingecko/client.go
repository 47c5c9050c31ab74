// Package coingecko is the price-provider client. It resolves caller input
// against the provider's coin catalog, fetches current USD pricing and
// historical series, and caches every response under a short TTL to stay
// clear of the provider's rate limits.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crypto-watchlist/internal/domain"
	"crypto-watchlist/internal/storage"
)

// Default configuration values.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 60 * time.Second

	userAgent        = "crypto-watchlist price tracker"
	catalogCacheKey  = "supported_coins"
	maxHistoryPoints = 30
)

// Failure taxonomy surfaced to callers. Transport errors, malformed
// bodies and missing fields all wrap the same sentinel: to a caller they
// are uniformly "no data for this id", with detail in the wrapped message
// and the log.
var (
	// ErrCatalogUnavailable is returned when the full coin catalog cannot
	// be fetched. Callers downgrade to using their input id verbatim.
	ErrCatalogUnavailable = errors.New("coin catalog unavailable")

	// ErrPriceUnavailable is returned when no price can be produced for a
	// coin id, whatever the underlying cause.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Client fetches cryptocurrency data from a CoinGecko-style REST API.
// All caches are owned by the client; there is no ambient global state.
type Client struct {
	baseURL   string
	client    *http.Client
	ttl       time.Duration
	logger    *log.Logger
	snapshots storage.SnapshotStore

	catalog *ttlCache[[]domain.CoinInfo]
	prices  *ttlCache[domain.PriceSnapshot]
	history *ttlCache[[]domain.HistoryPoint]
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithCacheTTL sets the time-to-live for cached responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSnapshotStore records every successfully fetched price snapshot to
// the given store. Record failures are logged, never surfaced.
func WithSnapshotStore(store storage.SnapshotStore) Option {
	return func(c *Client) {
		c.snapshots = store
	}
}

// New creates a new provider client for the given base URL
// (e.g. https://api.coingecko.com/api/v3).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		ttl:     DefaultCacheTTL,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.catalog = newTTLCache[[]domain.CoinInfo](c.ttl)
	c.prices = newTTLCache[domain.PriceSnapshot](c.ttl)
	c.history = newTTLCache[[]domain.HistoryPoint](c.ttl)
	return c
}

// ListSupportedCoins fetches (or returns cached) the provider's full coin
// catalog. Returns ErrCatalogUnavailable on any transport or decode
// failure; callers treat their own input as authoritative in that case.
func (c *Client) ListSupportedCoins(ctx context.Context) ([]domain.CoinInfo, error) {
	if cached, ok := c.catalog.get(catalogCacheKey); ok {
		return cached, nil
	}

	var coins []domain.CoinInfo
	if err := c.getJSON(ctx, c.baseURL+"/coins/list", nil, &coins); err != nil {
		c.logger.Printf("fetch supported coins: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	c.catalog.put(catalogCacheKey, coins)
	return coins, nil
}

// GetCurrentPrice returns the current USD pricing for a coin. Input is
// normalized and resolved against the catalog; the resulting snapshot is
// cached per coin id under the TTL.
func (c *Client) GetCurrentPrice(ctx context.Context, id string) (*domain.PriceSnapshot, error) {
	input := strings.TrimSpace(id)
	if input == "" {
		return nil, fmt.Errorf("%w: empty coin id", ErrPriceUnavailable)
	}
	normalized := strings.ToLower(input)

	coinID := c.resolveCoinID(ctx, normalized)

	if cached, ok := c.prices.get(coinID); ok {
		return &cached, nil
	}

	params := url.Values{
		"localization": {"false"},
		"tickers":      {"false"},
		"market_data":  {"true"},
	}

	var detail coinDetailResponse
	if err := c.getJSON(ctx, c.baseURL+"/coins/"+url.PathEscape(coinID), params, &detail); err != nil {
		c.logger.Printf("fetch price for %q (input %q): %v", coinID, input, err)
		return nil, fmt.Errorf("%w for %q (input %q): %v", ErrPriceUnavailable, coinID, input, err)
	}

	if detail.MarketData == nil {
		c.logger.Printf("fetch price for %q (input %q): market_data missing in response", coinID, input)
		return nil, fmt.Errorf("%w for %q (input %q): market_data missing", ErrPriceUnavailable, coinID, input)
	}
	price, ok := detail.MarketData.CurrentPrice["usd"]
	if !ok {
		c.logger.Printf("fetch price for %q (input %q): no USD price in response", coinID, input)
		return nil, fmt.Errorf("%w for %q (input %q): no USD price", ErrPriceUnavailable, coinID, input)
	}

	snap := domain.PriceSnapshot{
		CoinID:      coinID,
		Symbol:      strings.ToUpper(input),
		Name:        coinID,
		PriceUSD:    price,
		Change24h:   detail.MarketData.PriceChangePercentage24h,
		LastUpdated: detail.LastUpdated,
	}
	if detail.Symbol != "" {
		snap.Symbol = strings.ToUpper(detail.Symbol)
	}
	if detail.Name != "" {
		snap.Name = detail.Name
	}

	c.prices.put(coinID, snap)
	c.recordSnapshot(ctx, snap)
	return &snap, nil
}

// resolveCoinID resolves normalized caller input to a provider coin id
// using the catalog. An exact id match confirms the input; otherwise a
// unique symbol match translates symbol to id. When the catalog is
// unavailable, or no unambiguous match exists, the input is used verbatim.
func (c *Client) resolveCoinID(ctx context.Context, normalized string) string {
	catalog, err := c.ListSupportedCoins(ctx)
	if err != nil {
		c.logger.Printf("could not retrieve coin catalog, using %q as coin id verbatim: %v", normalized, err)
		return normalized
	}

	for _, coin := range catalog {
		if coin.ID == normalized {
			return normalized
		}
	}

	var match string
	matches := 0
	for _, coin := range catalog {
		if strings.ToLower(coin.Symbol) == normalized {
			matches++
			match = coin.ID
		}
	}
	switch {
	case matches == 1:
		c.logger.Printf("resolved symbol %q to coin id %q", normalized, match)
		return match
	case matches > 1:
		c.logger.Printf("symbol %q is ambiguous (%d catalog entries), using it as coin id verbatim", normalized, matches)
	}

	return normalized
}

// Timeframe aliases accepted by GetPriceHistory, mapped to provider day
// counts. Unrecognized timeframes default to 7 days.
var timeframeDays = map[string]string{
	"24h":  "1",
	"1d":   "1",
	"7d":   "7",
	"14d":  "14",
	"30d":  "30",
	"90d":  "90",
	"180d": "180",
	"1y":   "365",
	"max":  "max",
}

// GetPriceHistory returns a historical USD price series for a coin,
// thinned to at most 30 points.
func (c *Client) GetPriceHistory(ctx context.Context, id, timeframe string) ([]domain.HistoryPoint, error) {
	coinID := domain.NormalizeCoinID(id)
	if coinID == "" {
		return nil, fmt.Errorf("%w: empty coin id", ErrPriceUnavailable)
	}

	days, ok := timeframeDays[strings.ToLower(strings.TrimSpace(timeframe))]
	if !ok {
		days = "7"
	}

	cacheKey := "history_" + coinID + "_" + days
	if cached, ok := c.history.get(cacheKey); ok {
		return cached, nil
	}

	params := url.Values{
		"vs_currency": {"usd"},
		"days":        {days},
	}

	var chart marketChartResponse
	if err := c.getJSON(ctx, c.baseURL+"/coins/"+url.PathEscape(coinID)+"/market_chart", params, &chart); err != nil {
		c.logger.Printf("fetch history for %q (input %q): %v", coinID, id, err)
		return nil, fmt.Errorf("%w for %q: %v", ErrPriceUnavailable, coinID, err)
	}

	points := make([]domain.HistoryPoint, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.HistoryPoint{
			Time:  time.UnixMilli(int64(pair[0])).UTC(),
			Price: decimal.NewFromFloat(pair[1]).Round(2),
		})
	}
	points = thinPoints(points, maxHistoryPoints)

	c.history.put(cacheKey, points)
	return points, nil
}

// thinPoints reduces a series to at most max points by stepped sampling.
func thinPoints(points []domain.HistoryPoint, max int) []domain.HistoryPoint {
	if len(points) <= max {
		return points
	}
	step := len(points) / max
	thinned := make([]domain.HistoryPoint, 0, max)
	for i := 0; i < len(points); i += step {
		thinned = append(thinned, points[i])
	}
	return thinned
}

// SearchCoins performs a case-insensitive substring search over the
// catalog's id, symbol and name fields, capped at 10 matches.
func (c *Client) SearchCoins(ctx context.Context, query string) ([]domain.CoinInfo, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", ErrCatalogUnavailable)
	}

	catalog, err := c.ListSupportedCoins(ctx)
	if err != nil {
		return nil, err
	}

	var matches []domain.CoinInfo
	for _, coin := range catalog {
		if strings.Contains(strings.ToLower(coin.ID), q) ||
			strings.Contains(strings.ToLower(coin.Symbol), q) ||
			strings.Contains(strings.ToLower(coin.Name), q) {
			matches = append(matches, coin)
			if len(matches) == 10 {
				break
			}
		}
	}
	return matches, nil
}

// recordSnapshot appends a successful fetch to the snapshot log, if one
// is configured.
func (c *Client) recordSnapshot(ctx context.Context, snap domain.PriceSnapshot) {
	if c.snapshots == nil {
		return
	}

	point := &domain.PricePoint{
		CoinID:    snap.CoinID,
		PriceUSD:  snap.PriceUSD,
		Change24h: snap.Change24h,
		FetchedAt: time.Now(),
	}
	if err := c.snapshots.Insert(ctx, point); err != nil {
		c.logger.Printf("record snapshot for %q: %v", snap.CoinID, err)
	}
}

// getJSON performs one GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// coinDetailResponse is the raw provider response for /coins/{id},
// reduced to the fields the tracker uses. Optional fields are pointers so
// absence survives decoding.
type coinDetailResponse struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	LastUpdated *string `json:"last_updated"`
	MarketData  *struct {
		CurrentPrice             map[string]domain.Amount `json:"current_price"`
		PriceChangePercentage24h *domain.Amount           `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// marketChartResponse is the raw provider response for
// /coins/{id}/market_chart: prices as [timestamp_ms, price] pairs.
type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}
