package scanner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"SetupScanner/internal/model"
	"SetupScanner/internal/setup"
)

// fetchFunc adapts a function to the collector.Fetcher interface.
type fetchFunc func(ctx context.Context, symbol string, days int) ([]model.Bar, error)

func (f fetchFunc) Name() string { return "func" }

func (f fetchFunc) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	return f(ctx, symbol, days)
}

func bar(o, h, l, c float64) model.Bar {
	return model.Bar{Open: o, High: h, Low: l, Close: c}
}

var (
	insideBars = []model.Bar{bar(10, 12.5, 8.5, 10), bar(10, 12, 9, 11), bar(10.5, 11.5, 9.5, 10.8)}
	hammerBars = []model.Bar{bar(100, 104, 96, 101), bar(101, 104, 95, 100), bar(100, 103, 90, 102)}
	plainBars  = []model.Bar{bar(100, 104, 96, 101), bar(101, 104, 95, 100), bar(100, 110, 80, 90)}
)

func fixtures(data map[string][]model.Bar, failing ...string) fetchFunc {
	fail := make(map[string]bool)
	for _, s := range failing {
		fail[s] = true
	}
	return func(_ context.Context, symbol string, _ int) ([]model.Bar, error) {
		if fail[symbol] {
			return nil, fmt.Errorf("fetch %s: unavailable", symbol)
		}
		return data[symbol], nil
	}
}

type progressLog struct {
	mu      sync.Mutex
	updates []model.ScanProgress
}

func (p *progressLog) record(u model.ScanProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
}

func (p *progressLog) last() model.ScanProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == 0 {
		return model.ScanProgress{}
	}
	return p.updates[len(p.updates)-1]
}

func resultSymbols(results []model.ScanResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Symbol
	}
	return out
}

func TestRun_MixedOutcomes(t *testing.T) {
	f := fixtures(map[string][]model.Bar{"AAA": insideBars, "CCC": hammerBars}, "BBB")
	var p progressLog

	run, err := NewScanner(f, 252, 1).Run(context.Background(), []string{"AAA", "BBB", "CCC"}, p.record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", run.Results)
	}
	if run.Results[0].Symbol != "AAA" || run.Results[0].Type != model.SetupInsideBar {
		t.Errorf("expected AAA inside bar first, got %+v", run.Results[0])
	}
	if run.Results[1].Symbol != "CCC" || run.Results[1].Type != model.SetupHammer {
		t.Errorf("expected CCC hammer second, got %+v", run.Results[1])
	}
	if run.Results[0].Price != 10.8 {
		t.Errorf("expected price 10.8, got %v", run.Results[0].Price)
	}
	if run.Skipped != 1 || run.Processed != 3 || run.Total != 3 {
		t.Errorf("unexpected counters: %+v", run)
	}
	if run.ID == "" {
		t.Error("expected a run id")
	}

	want := []model.ScanProgress{
		{Processed: 1, Total: 3, Matches: 1},
		{Processed: 2, Total: 3, Matches: 1},
		{Processed: 3, Total: 3, Matches: 2},
	}
	if !reflect.DeepEqual(p.updates, want) {
		t.Errorf("expected progress %v, got %v", want, p.updates)
	}
}

func TestRun_EmptySymbols(t *testing.T) {
	var calls int32
	f := fetchFunc(func(context.Context, string, int) ([]model.Bar, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	var p progressLog

	run, err := NewScanner(f, 252, 4).Run(context.Background(), nil, p.record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Results == nil || len(run.Results) != 0 {
		t.Errorf("expected empty non-nil results, got %#v", run.Results)
	}
	if calls != 0 {
		t.Errorf("expected no fetch calls, got %d", calls)
	}
	if len(p.updates) != 0 {
		t.Errorf("expected no progress updates, got %v", p.updates)
	}
}

func TestRun_NoMatches(t *testing.T) {
	f := fixtures(map[string][]model.Bar{"AAA": plainBars, "BBB": plainBars})
	run, err := NewScanner(f, 252, 1).Run(context.Background(), []string{"AAA", "BBB"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 0 || run.Skipped != 0 || run.Processed != 2 {
		t.Errorf("expected a clean empty run, got %+v", run)
	}
}

func TestRun_InsufficientHistory(t *testing.T) {
	// Two bars form a valid inside bar but the scan floor is three bars.
	short := insideBars[1:]
	f := fixtures(map[string][]model.Bar{"AAA": short, "BBB": {}})

	run, err := NewScanner(f, 252, 1).Run(context.Background(), []string{"AAA", "BBB"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 0 {
		t.Errorf("expected no results, got %+v", run.Results)
	}
	if run.Skipped != 2 {
		t.Errorf("expected both symbols skipped, got %d", run.Skipped)
	}
}

func TestRun_SingleResultPerSymbol(t *testing.T) {
	match := func(t model.SetupType) setup.Detector {
		return func([]model.Bar) (model.SetupMatch, bool) {
			return model.SetupMatch{Type: t, Price: 1}, true
		}
	}
	s := NewScanner(fixtures(map[string][]model.Bar{"AAA": plainBars}), 252, 1)
	s.Detectors = []setup.Detector{match(model.SetupInsideBar), match(model.SetupHammer)}

	run, err := s.Run(context.Background(), []string{"AAA"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 1 || run.Results[0].Type != model.SetupInsideBar {
		t.Errorf("expected exactly one inside bar result, got %+v", run.Results)
	}
}

func TestRun_DuplicateSymbols(t *testing.T) {
	f := fixtures(map[string][]model.Bar{"AAA": insideBars})
	run, err := NewScanner(f, 252, 1).Run(context.Background(), []string{"AAA", "AAA"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultSymbols(run.Results); !reflect.DeepEqual(got, []string{"AAA", "AAA"}) {
		t.Errorf("expected duplicates kept, got %v", got)
	}
}

func TestRun_LookbackPassedThrough(t *testing.T) {
	var gotDays int
	f := fetchFunc(func(_ context.Context, _ string, days int) ([]model.Bar, error) {
		gotDays = days
		return insideBars, nil
	})
	if _, err := NewScanner(f, 60, 1).Run(context.Background(), []string{"AAA"}, nil); err != nil {
		t.Fatal(err)
	}
	if gotDays != 60 {
		t.Errorf("expected lookback 60, got %d", gotDays)
	}
	if _, err := NewScanner(f, 0, 1).Run(context.Background(), []string{"AAA"}, nil); err != nil {
		t.Fatal(err)
	}
	if gotDays != DefaultLookbackDays {
		t.Errorf("expected default lookback %d, got %d", DefaultLookbackDays, gotDays)
	}
}

func TestRun_ConcurrentPreservesOrder(t *testing.T) {
	symbols := make([]string, 40)
	data := make(map[string][]model.Bar)
	var failing []string
	var want []string
	for i := range symbols {
		sym := fmt.Sprintf("S%02d", i)
		symbols[i] = sym
		switch i % 4 {
		case 0:
			data[sym] = insideBars
			want = append(want, sym)
		case 1:
			data[sym] = hammerBars
			want = append(want, sym)
		case 2:
			data[sym] = plainBars
		case 3:
			failing = append(failing, sym)
		}
	}
	base := fixtures(data, failing...)

	var inFlight, maxInFlight int32
	rng := rand.New(rand.NewSource(1))
	var rngMu sync.Mutex
	f := fetchFunc(func(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		rngMu.Lock()
		d := time.Duration(rng.Intn(5)) * time.Millisecond
		rngMu.Unlock()
		time.Sleep(d)
		return base(ctx, symbol, days)
	})

	var p progressLog
	run, err := NewScanner(f, 252, 8).Run(context.Background(), symbols, p.record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultSymbols(run.Results); !reflect.DeepEqual(got, want) {
		t.Errorf("expected results in input order %v, got %v", want, got)
	}
	if run.Processed != 40 || run.Skipped != 10 {
		t.Errorf("unexpected counters: processed=%d skipped=%d", run.Processed, run.Skipped)
	}
	if last := p.last(); last.Processed != 40 || last.Matches != 20 {
		t.Errorf("unexpected final progress: %+v", last)
	}
	if len(p.updates) != 40 {
		t.Errorf("expected 40 progress updates, got %d", len(p.updates))
	}
	if maxInFlight > 8 {
		t.Errorf("expected at most 8 concurrent fetches, got %d", maxInFlight)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	f := fetchFunc(func(_ context.Context, symbol string, _ int) ([]model.Bar, error) {
		if atomic.AddInt32(&calls, 1) == 2 {
			cancel()
		}
		return insideBars, nil
	})

	run, err := NewScanner(f, 252, 1).Run(ctx, []string{"AAA", "BBB", "CCC", "DDD"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := resultSymbols(run.Results); !reflect.DeepEqual(got, []string{"AAA", "BBB"}) {
		t.Errorf("expected results gathered before cancel, got %v", got)
	}
	if run.Processed != 2 {
		t.Errorf("expected 2 processed, got %d", run.Processed)
	}
}
