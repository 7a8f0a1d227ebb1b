package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"SetupScanner/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *resty.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
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

// yahooRange picks the smallest chart range covering the requested number of sessions.
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)))
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    yahooRange(days),
		}).
		Get(u)
	if err != nil {
		return nil, fetchErr(symbol, fmt.Errorf("yahoo fetch: %w", err))
	}
	if resp.IsError() {
		return nil, fetchErr(symbol, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String()))
	}

	bars, err := parseYahooChart(resp.Body())
	if err != nil {
		return nil, fetchErr(symbol, err)
	}
	return trimBars(bars, days), nil
}

// parseYahooChart decodes the unadjusted OHLC arrays of a chart response.
// Rows with any null price (holidays, halted sessions) are dropped.
func parseYahooChart(body []byte) ([]model.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo decode: invalid json")
	}
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}

	result := gjson.GetBytes(body, "chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, ErrNoData
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]model.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		o, okO := value(opens, i)
		h, okH := value(highs, i)
		l, okL := value(lows, i)
		c, okC := value(closes, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		v, _ := value(volumes, i)
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts.Int(), 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func value(arr []gjson.Result, i int) (float64, bool) {
	if i >= len(arr) || arr[i].Type != gjson.Number {
		return 0, false
	}
	return arr[i].Float(), true
}
