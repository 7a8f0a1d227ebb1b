package model

import "time"

// Bar represents one daily trading session.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Listing is one row of the symbol list.
type Listing struct {
	Symbol   string
	Company  string
	Sector   string
	Industry string
	Tags     []string
}
