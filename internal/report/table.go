package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"SetupScanner/internal/model"
)

// Header is the column layout shared by the table and CSV renderers.
var Header = []string{"Symbol", "Setup", "Price", "Day%"}

// Row renders one result as display strings in Header order.
func Row(r model.ScanResult) []string {
	return []string{r.Symbol, string(r.Type), FormatPrice(r.Price), FormatPercent(r.DayChangePct)}
}

// RenderTable writes the results as a terminal table.
func RenderTable(w io.Writer, results []model.ScanResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No setups found.")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Setup Scanner")
	tw.AppendHeader(table.Row{Header[0], Header[1], Header[2], Header[3]})
	for _, r := range results {
		cells := Row(r)
		tw.AppendRow(table.Row{cells[0], cells[1], cells[2], cells[3]})
	}
	tw.AppendFooter(table.Row{"", "", "Setups", len(results)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 2, Align: text.AlignCenter, Colors: text.Colors{text.FgYellow}},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	tw.Render()
}
