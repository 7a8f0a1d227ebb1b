package symbols

import (
	"context"
	"errors"
	"strings"

	"SetupScanner/internal/model"
)

// ErrEmpty is returned when a source yields no symbols at all.
var ErrEmpty = errors.New("symbol list is empty")

// Source supplies the ordered list of instruments to scan.
type Source interface {
	Load(ctx context.Context) ([]model.Listing, error)
}

// StaticSource serves a fixed list of tickers.
type StaticSource []string

func (s StaticSource) Load(_ context.Context) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(s))
	for _, sym := range s {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		out = append(out, model.Listing{Symbol: sym})
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// FilterByTags keeps listings carrying any of tags. An empty tag list keeps everything.
func FilterByTags(listings []model.Listing, tags []string) []model.Listing {
	if len(tags) == 0 {
		return listings
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[strings.ToLower(strings.TrimSpace(t))] = true
	}
	var out []model.Listing
	for _, l := range listings {
		for _, t := range l.Tags {
			if want[strings.ToLower(t)] {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Symbols projects listings to their tickers, keeping order and duplicates.
func Symbols(listings []model.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.Symbol
	}
	return out
}
