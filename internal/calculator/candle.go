package calculator

import (
	"math"

	"SetupScanner/internal/model"
)

// Anatomy holds the derived proportions of a single bar.
type Anatomy struct {
	Body        float64
	Range       float64
	LowerShadow float64
	UpperShadow float64
}

// CandleAnatomy splits a bar into body, full range and both shadows.
func CandleAnatomy(b model.Bar) Anatomy {
	return Anatomy{
		Body:        math.Abs(b.Close - b.Open),
		Range:       b.High - b.Low,
		LowerShadow: math.Min(b.Open, b.Close) - b.Low,
		UpperShadow: b.High - math.Max(b.Open, b.Close),
	}
}

// DayChangePct returns the open-to-close change of a bar in percent.
// A zero open has no defined change and yields NaN.
func DayChangePct(b model.Bar) float64 {
	if b.Open == 0 {
		return math.NaN()
	}
	return (b.Close - b.Open) / b.Open * 100
}

// IsGreen reports whether the session closed above its open.
func IsGreen(b model.Bar) bool {
	return b.Close > b.Open
}
