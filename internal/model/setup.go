package model

import "time"

// SetupType names a detected candlestick setup. The value doubles as its display label.
type SetupType string

const (
	SetupInsideBar SetupType = "Inside Bar"
	SetupHammer    SetupType = "Hammer Setup"
)

// SetupMatch describes a successful detection on the most recent bar.
type SetupMatch struct {
	Type         SetupType
	Price        float64
	DayChangePct float64 // NaN when the session opened at zero
}

// ScanResult is one row of the scan report.
type ScanResult struct {
	Symbol       string
	Type         SetupType
	Price        float64
	DayChangePct float64
}

// NewScanResult builds a result row from a symbol and its match.
func NewScanResult(symbol string, m SetupMatch) ScanResult {
	return ScanResult{
		Symbol:       symbol,
		Type:         m.Type,
		Price:        m.Price,
		DayChangePct: m.DayChangePct,
	}
}

// ScanProgress is emitted once per processed symbol.
type ScanProgress struct {
	Processed int
	Total     int
	Matches   int
}

// ScanRun aggregates one full pass over a symbol list.
type ScanRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Processed  int
	Skipped    int
	Results    []ScanResult
}
