package setup

import (
	"SetupScanner/internal/calculator"
	"SetupScanner/internal/model"
)

const (
	insideBarMinBars = 2
	hammerMinBars    = 3

	hammerMaxBodyRatio   = 0.4 // body <= 0.4 * range
	hammerMinLowerToBody = 2.0 // lower shadow >= 2 * body
)

// DetectInsideBar matches when the latest bar's high-low range sits strictly
// inside the previous bar's range.
func DetectInsideBar(series []model.Bar) (model.SetupMatch, bool) {
	if len(series) < insideBarMinBars {
		return model.SetupMatch{}, false
	}
	cur := series[len(series)-1]
	prev := series[len(series)-2]

	if cur.High < prev.High && cur.Low > prev.Low {
		return newMatch(model.SetupInsideBar, cur), true
	}
	return model.SetupMatch{}, false
}

// DetectHammerSetup matches a green hammer that broke below the previous low:
// small body, long lower shadow, short upper shadow.
// Only the last bar and the previous low are read, but three bars are required.
func DetectHammerSetup(series []model.Bar) (model.SetupMatch, bool) {
	if len(series) < hammerMinBars {
		return model.SetupMatch{}, false
	}
	cur := series[len(series)-1]
	prev := series[len(series)-2]

	a := calculator.CandleAnatomy(cur)
	smallBody := a.Body <= hammerMaxBodyRatio*a.Range
	longLower := a.LowerShadow >= hammerMinLowerToBody*a.Body
	shortUpper := a.UpperShadow <= a.Body
	brokeBelow := cur.Low < prev.Low
	closedGreen := calculator.IsGreen(cur)

	if smallBody && longLower && shortUpper && brokeBelow && closedGreen {
		return newMatch(model.SetupHammer, cur), true
	}
	return model.SetupMatch{}, false
}

func newMatch(t model.SetupType, cur model.Bar) model.SetupMatch {
	return model.SetupMatch{
		Type:         t,
		Price:        cur.Close,
		DayChangePct: calculator.DayChangePct(cur),
	}
}
