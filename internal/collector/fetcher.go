package collector

import (
	"context"
	"errors"
	"fmt"

	"SetupScanner/internal/model"
)

// ErrNoData is returned when a provider answers without any usable bars.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching daily price history.
// Bars are returned in ascending time order, the last one being the current session.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	Name() string
}

// FetchError wraps any provider failure for a single symbol.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(symbol string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Symbol: symbol, Err: err}
}

// trimBars keeps the most recent n bars.
func trimBars(bars []model.Bar, n int) []model.Bar {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
