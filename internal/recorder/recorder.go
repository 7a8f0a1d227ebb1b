package recorder

import "SetupScanner/internal/model"

// Recorder persists scan history for later review.
type Recorder interface {
	RecordScan(run *model.ScanRun) error
	// LatestScan returns the most recently finished run, or nil when none is recorded.
	LatestScan() (*model.ScanRun, error)
	Close() error
}
