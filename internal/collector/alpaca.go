package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"StockSentry/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca Market Data API.
type AlpacaFetcher struct {
	BaseURL string
	KeyID   string
	Secret  string
	Client  *http.Client
}

// NewAlpacaFetcher creates a new fetcher with optional proxy support.
func NewAlpacaFetcher(baseURL, keyID, secret, proxyURL string) *AlpacaFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &AlpacaFetcher{
		BaseURL: baseURL,
		KeyID:   keyID,
		Secret:  secret,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// alpacaBars matches the Alpaca stock bars response.
// https://docs.alpaca.markets/reference/stockbars
type alpacaBars struct {
	Bars []struct {
		Time   time.Time `json:"t"`
		Open   float64   `json:"o"`
		High   float64   `json:"h"`
		Low    float64   `json:"l"`
		Close  float64   `json:"c"`
		Volume float64   `json:"v"`
	} `json:"bars"`
}

func (f *AlpacaFetcher) FetchBars(symbol string, lookback time.Duration, interval Interval, limit int) ([]model.Bar, error) {
	end := time.Now().UTC()
	start := end.Add(-lookback)

	u, err := url.Parse(fmt.Sprintf("%s/v2/stocks/%s/bars", f.BaseURL, url.PathEscape(symbol)))
	if err != nil {
		return nil, fmt.Errorf("alpaca url: %w", err)
	}
	q := u.Query()
	q.Set("feed", "iex")
	q.Set("timeframe", string(interval))
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("APCA-API-KEY-ID", f.KeyID)
	req.Header.Set("APCA-API-SECRET-KEY", f.Secret)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpaca fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpaca read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpaca: status %d, body: %s", resp.StatusCode, string(body))
	}

	var decoded alpacaBars
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("alpaca decode: %w", err)
	}

	bars := make([]model.Bar, 0, len(decoded.Bars))
	for _, b := range decoded.Bars {
		bars = append(bars, model.Bar{
			Time:   b.Time,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
