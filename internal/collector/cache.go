package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"SetupScanner/internal/model"
)

// CachedFetcher serves daily bars from a leveldb store and falls back to the
// wrapped fetcher once an entry is older than TTL. Failed fetches are never cached.
type CachedFetcher struct {
	Fetcher Fetcher
	TTL     time.Duration

	db  *leveldb.DB
	now func() time.Time
}

type cacheEntry struct {
	FetchedAt time.Time   `json:"fetched_at"`
	Bars      []cachedBar `json:"bars"`
}

type cachedBar struct {
	Time   int64   `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// NewCachedFetcher opens (or creates) the leveldb store at path.
func NewCachedFetcher(fetcher Fetcher, path string, ttl time.Duration) (*CachedFetcher, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open bar cache: %w", err)
	}
	log.Printf("[INFO] bar cache opened: %s (ttl %v)", path, ttl)
	return &CachedFetcher{Fetcher: fetcher, TTL: ttl, db: db, now: time.Now}, nil
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

func (c *CachedFetcher) key(symbol string, days int) []byte {
	return fmt.Appendf(nil, "%s-%s-1d-%d", c.Fetcher.Name(), symbol, days)
}

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	key := c.key(symbol, days)

	if bars, ok := c.lookup(key); ok {
		return bars, nil
	}

	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if err := c.store(key, bars); err != nil {
		log.Printf("[WARN] cache store %s: %v", symbol, err)
	}
	return bars, nil
}

func (c *CachedFetcher) lookup(key []byte) ([]model.Bar, bool) {
	data, err := c.db.Get(key, nil)
	if err != nil {
		if !errors.Is(err, leveldb.ErrNotFound) {
			log.Printf("[WARN] cache read %s: %v", key, err)
		}
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if c.now().Sub(entry.FetchedAt) > c.TTL {
		return nil, false
	}
	bars := make([]model.Bar, len(entry.Bars))
	for i, b := range entry.Bars {
		bars[i] = model.Bar{
			Time:   time.Unix(b.Time, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return bars, true
}

func (c *CachedFetcher) store(key []byte, bars []model.Bar) error {
	entry := cacheEntry{FetchedAt: c.now(), Bars: make([]cachedBar, len(bars))}
	for i, b := range bars {
		entry.Bars[i] = cachedBar{
			Time:   b.Time.Unix(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.db.Put(key, data, nil)
}

// Close releases the underlying store.
func (c *CachedFetcher) Close() error {
	return c.db.Close()
}
