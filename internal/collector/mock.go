package collector

import (
	"context"
	"time"

	"SetupScanner/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData map[string][]model.Bar
	Errors    map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.Bar, error) {
	if err, ok := m.Errors[symbol]; ok {
		return nil, fetchErr(symbol, err)
	}
	if bars, ok := m.DailyData[symbol]; ok {
		return trimBars(bars, days), nil
	}
	price := m.Price
	if price == 0 {
		price = 100
	}
	return generateMockBars(price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
