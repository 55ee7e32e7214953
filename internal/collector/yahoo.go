package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"SignalSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher downloads historical bars from the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"KRW-SOL": "SOL-KRW",
			"KRW-BTC": "BTC-KRW",
			"KRW-ETH": "ETH-KRW",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func value(vs []*float64, i int) (float64, bool) {
	if i >= len(vs) || vs[i] == nil {
		return 0, false
	}
	return *vs[i], true
}

// FetchHourlyBars returns hourly bars for the given Yahoo range ("1mo", "3mo", "730d", ...).
// Timestamps are truncated to the hour so day-apart bars line up exactly.
func (f *YahooFetcher) FetchHourlyBars(ctx context.Context, symbol, rng string) ([]model.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=60m&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))
	seen := make(map[int64]bool, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c, ok := value(quote.Close, i)
		if !ok {
			continue // null bar (halt, holiday)
		}
		vol, _ := value(quote.Volume, i)
		o, _ := value(quote.Open, i)
		h, _ := value(quote.High, i)
		l, _ := value(quote.Low, i)
		t := time.Unix(ts, 0).UTC().Truncate(time.Hour)
		if seen[t.Unix()] {
			continue // the live bar can repeat the last full hour
		}
		seen[t.Unix()] = true
		bars = append(bars, model.Bar{Time: t, Open: o, High: h, Low: l, Close: c, Volume: vol})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// YahooSource adapts YahooFetcher to Source.
type YahooSource struct {
	Fetcher *YahooFetcher
	Symbol  string
	Range   string
	// Location, when set, replaces UTC as the zone entry hours are read in.
	Location *time.Location
}

func (y *YahooSource) Name() string { return "yahoo:" + y.Symbol }

func (y *YahooSource) Load(ctx context.Context) (*model.Series, error) {
	bars, err := y.Fetcher.FetchHourlyBars(ctx, y.Symbol, y.Range)
	if err != nil {
		return nil, err
	}
	return newSeries(y.Symbol, bars, y.Location)
}
