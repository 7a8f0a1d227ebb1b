package setup

import "SetupScanner/internal/model"

// Detector classifies the tail of a bar series.
type Detector func(series []model.Bar) (model.SetupMatch, bool)

// Detectors lists the setups in priority order. The first match wins.
var Detectors = []Detector{
	DetectInsideBar,
	DetectHammerSetup,
}

// Classify runs the default detectors against series.
func Classify(series []model.Bar) (model.SetupMatch, bool) {
	return ClassifyWith(Detectors, series)
}

// ClassifyWith runs detectors in order and returns the first match.
func ClassifyWith(detectors []Detector, series []model.Bar) (model.SetupMatch, bool) {
	for _, d := range detectors {
		if m, ok := d(series); ok {
			return m, true
		}
	}
	return model.SetupMatch{}, false
}
