package symbols

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"SetupScanner/internal/model"
)

var symbolColumnNames = []string{"Symbol", "symbol", "SYMBOL", "symbols", "Symbols", "ticker", "Ticker", "stock", "Stock"}

const (
	companyColumn  = "Company"
	sectorColumn   = "TradingView_Sector"
	industryColumn = "TradingView_Industry"
	tagsColumn     = "TAGS"
)

// CSVSource reads the symbol list from a CSV file or an http(s) URL.
type CSVSource struct {
	Location string
	Column   string // preferred symbol column; auto-detected when empty or missing
	Client   *resty.Client
}

// NewCSVSource creates a CSV source with optional proxy support.
func NewCSVSource(location, column, proxyURL string) *CSVSource {
	c := resty.New().SetTimeout(30 * time.Second)
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return &CSVSource{Location: location, Column: column, Client: c}
}

func (s *CSVSource) Load(ctx context.Context) ([]model.Listing, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return ParseCSV(bytes.NewReader(data), s.Column)
}

func (s *CSVSource) read(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(s.Location, "http://") || strings.HasPrefix(s.Location, "https://") {
		resp, err := s.Client.R().SetContext(ctx).Get(s.Location)
		if err != nil {
			return nil, fmt.Errorf("download symbols: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("download symbols: status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	}
	data, err := os.ReadFile(s.Location)
	if err != nil {
		return nil, fmt.Errorf("read symbols: %w", err)
	}
	return data, nil
}

// ParseCSV reads listings from CSV with a header row. Rows with a blank symbol are dropped.
func ParseCSV(r io.Reader, column string) ([]model.Listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		names[i] = h
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	symCol := findSymbolColumn(names, idx, column)
	if symCol < 0 {
		return nil, fmt.Errorf("no symbol column found, available columns: %v", names)
	}

	var out []model.Listing
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		sym := strings.TrimSpace(field(rec, symCol))
		if sym == "" {
			continue
		}
		out = append(out, model.Listing{
			Symbol:   sym,
			Company:  strings.TrimSpace(optional(rec, idx, companyColumn)),
			Sector:   strings.TrimSpace(optional(rec, idx, sectorColumn)),
			Industry: strings.TrimSpace(optional(rec, idx, industryColumn)),
			Tags:     splitTags(optional(rec, idx, tagsColumn)),
		})
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// findSymbolColumn prefers the configured column, then well-known names,
// then any header mentioning symbol, ticker or stock.
func findSymbolColumn(names []string, idx map[string]int, preferred string) int {
	if preferred != "" {
		if i, ok := idx[preferred]; ok {
			return i
		}
	}
	for _, n := range symbolColumnNames {
		if i, ok := idx[n]; ok {
			return i
		}
	}
	for i, n := range names {
		lower := strings.ToLower(n)
		for _, kw := range []string{"symbol", "ticker", "stock"} {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func optional(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok {
		return ""
	}
	return field(rec, i)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
