package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"SetupScanner/internal/model"
)

var results = []model.ScanResult{
	{Symbol: "AAA", Type: model.SetupInsideBar, Price: 10.8, DayChangePct: 2.857142857142857},
	{Symbol: "CCC", Type: model.SetupHammer, Price: 9.9, DayChangePct: math.NaN()},
}

func TestFormat(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatPrice(10.8), "$10.80"},
		{FormatPrice(1234.5678), "$1234.57"},
		{FormatPrice(math.NaN()), "n/a"},
		{FormatPercent(2.857142857142857), "2.86%"},
		{FormatPercent(-10), "-10.00%"},
		{FormatPercent(math.Inf(1)), "n/a"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, results)
	out := buf.String()
	for _, want := range []string{"SYMBOL", "AAA", "Inside Bar", "$10.80", "2.86%", "CCC", "Hammer Setup", "n/a"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "AAA") > strings.Index(out, "CCC") {
		t.Error("expected rows in result order")
	}
}

func TestRenderTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, nil)
	if strings.TrimSpace(buf.String()) != "No setups found." {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "setups.csv")
	if err := ExportCSV(path, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Symbol", "Setup", "Price", "Day%"},
		{"AAA", "Inside Bar", "$10.80", "2.86%"},
		{"CCC", "Hammer Setup", "$9.90", "n/a"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("expected %v, got %v", want, records)
	}
}

func TestProgressMessage(t *testing.T) {
	got := ProgressMessage(model.ScanProgress{Processed: 3, Total: 10, Matches: 1})
	if got != "Processing 3/10 symbols | 1 setups found" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, 4)
	bar.Update(model.ScanProgress{Processed: 2, Total: 4, Matches: 1})
	if v := bar.tracker.Value(); v != 2 {
		t.Errorf("expected tracker value 2, got %d", v)
	}
	bar.Update(model.ScanProgress{Processed: 4, Total: 4, Matches: 1})
	bar.Stop()
	if !bar.tracker.IsDone() {
		t.Error("expected tracker done after Stop")
	}
}
