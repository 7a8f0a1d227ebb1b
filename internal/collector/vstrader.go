package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"SetupScanner/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	Client  *resty.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	c := newHTTPClient(proxyURL)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &VsTraderFetcher{BaseURL: baseURL, Client: c}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *VsTraderFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"limit":  strconv.Itoa(days),
		}).
		Get(f.BaseURL + "/api/v1/bars/daily")
	if err != nil {
		return nil, fetchErr(symbol, fmt.Errorf("fetch bars: %w", err))
	}
	if resp.IsError() {
		return nil, fetchErr(symbol, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String()))
	}

	var vsBars []vsBar
	if err := json.Unmarshal(resp.Body(), &vsBars); err != nil {
		return nil, fetchErr(symbol, fmt.Errorf("decode bars: %w", err))
	}
	if len(vsBars) == 0 {
		return nil, fetchErr(symbol, ErrNoData)
	}

	bars := make([]model.Bar, len(vsBars))
	for i, vb := range vsBars {
		bars[i] = model.Bar{
			Time:   time.Unix(vb.Timestamp, 0).UTC(),
			Open:   vb.Open,
			High:   vb.High,
			Low:    vb.Low,
			Close:  vb.Close,
			Volume: vb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return trimBars(bars, days), nil
}
