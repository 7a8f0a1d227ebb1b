package notifier

import (
	"fmt"
	"html"
	"strings"

	"SetupScanner/internal/model"
	"SetupScanner/internal/report"
)

// maxReportLines keeps a report well under Telegram's 4096 character limit.
const maxReportLines = 60

// FormatScanReport formats a finished scan into a Telegram message.
func FormatScanReport(run *model.ScanRun) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 <b>Setup Scanner</b> | %s\n\n", run.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Processed: %d/%d symbols\n", run.Processed, run.Total))
	if run.Skipped > 0 {
		b.WriteString(fmt.Sprintf("Skipped: %d\n", run.Skipped))
	}
	b.WriteString(fmt.Sprintf("Setups found: %d\n", len(run.Results)))

	if len(run.Results) == 0 {
		b.WriteString("\n❌ No setups found.")
		return b.String()
	}

	b.WriteString("\n")
	for i, r := range run.Results {
		if i == maxReportLines {
			b.WriteString(fmt.Sprintf("… and %d more\n", len(run.Results)-maxReportLines))
			break
		}
		b.WriteString(fmt.Sprintf("• <code>%s</code> %s %s (%s)\n",
			html.EscapeString(r.Symbol), r.Type, report.FormatPrice(r.Price), report.FormatPercent(r.DayChangePct)))
	}
	return b.String()
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	return "Available commands:\n• /scan – run a scan now\n• /last – show the latest scan"
}
