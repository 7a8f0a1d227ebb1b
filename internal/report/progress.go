package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"SetupScanner/internal/model"
)

// ProgressMessage is the status line shown while a scan runs.
func ProgressMessage(p model.ScanProgress) string {
	return fmt.Sprintf("Processing %d/%d symbols | %d setups found", p.Processed, p.Total, p.Matches)
}

// ProgressBar renders scan progress on a terminal.
type ProgressBar struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

// NewProgressBar starts rendering a single tracker for total symbols to out.
func NewProgressBar(out io.Writer, total int) *ProgressBar {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetMessageLength(48)
	pw.SetTrackerLength(25)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Options.PercentFormat = "%2.0f%%"

	tracker := &progress.Tracker{
		Message: ProgressMessage(model.ScanProgress{Total: total}),
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)
	tracker.Start()
	go pw.Render()
	for !pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}

	return &ProgressBar{pw: pw, tracker: tracker}
}

// Update is a scanner.ProgressFunc.
func (b *ProgressBar) Update(p model.ScanProgress) {
	b.tracker.SetValue(int64(p.Processed))
	b.tracker.UpdateMessage(ProgressMessage(p))
}

// Stop marks the tracker done and waits for the final render.
func (b *ProgressBar) Stop() {
	b.tracker.MarkAsDone()
	b.pw.Stop()
	for b.pw.IsRenderInProgress() {
		time.Sleep(50 * time.Millisecond)
	}
}
