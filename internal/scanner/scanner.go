package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"SetupScanner/internal/collector"
	"SetupScanner/internal/model"
	"SetupScanner/internal/setup"
)

const (
	// MinBars is the shortest history a symbol needs to be evaluated at all.
	MinBars = 3
	// DefaultLookbackDays covers one year of daily sessions.
	DefaultLookbackDays = 252
)

// ErrInsufficientHistory marks a symbol whose provider returned fewer than MinBars bars.
var ErrInsufficientHistory = errors.New("insufficient history")

// ProgressFunc receives one update per processed symbol. It must not block for long.
type ProgressFunc func(model.ScanProgress)

// Scanner runs the setup detectors across a list of symbols.
type Scanner struct {
	Fetcher      collector.Fetcher
	LookbackDays int
	Workers      int              // <= 1 scans sequentially
	Detectors    []setup.Detector // priority order, defaults to setup.Detectors
}

// NewScanner creates a Scanner.
func NewScanner(fetcher collector.Fetcher, lookbackDays, workers int) *Scanner {
	return &Scanner{Fetcher: fetcher, LookbackDays: lookbackDays, Workers: workers}
}

// Run scans symbols in order and returns the matches in input order, at most one per symbol.
// Per-symbol failures are logged and counted as skipped; they never fail the run.
// The only error returned is ctx's, together with the results gathered so far.
func (s *Scanner) Run(ctx context.Context, symbols []string, progress ProgressFunc) (*model.ScanRun, error) {
	run := &model.ScanRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Total:     len(symbols),
		Results:   []model.ScanResult{},
	}

	var err error
	if s.Workers > 1 && len(symbols) > 1 {
		err = s.runConcurrent(ctx, symbols, progress, run)
	} else {
		err = s.runSequential(ctx, symbols, progress, run)
	}

	run.FinishedAt = time.Now()
	log.Printf("[INFO] scan %s finished: %d/%d processed, %d skipped, %d setups in %v",
		run.ID, run.Processed, run.Total, run.Skipped, len(run.Results), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return run, err
}

func (s *Scanner) runSequential(ctx context.Context, symbols []string, progress ProgressFunc, run *model.ScanRun) error {
	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, matched, err := s.evaluate(ctx, sym)
		switch {
		case err != nil:
			run.Skipped++
			log.Printf("[WARN] skip %s: %v", sym, err)
		case matched:
			run.Results = append(run.Results, res)
		}
		run.Processed = i + 1
		emit(progress, model.ScanProgress{Processed: i + 1, Total: len(symbols), Matches: len(run.Results)})
	}
	return nil
}

type outcome struct {
	done    bool
	matched bool
	result  model.ScanResult
	err     error
}

// runConcurrent fetches with at most Workers in flight and merges by input index,
// so the result order never depends on provider latency.
func (s *Scanner) runConcurrent(ctx context.Context, symbols []string, progress ProgressFunc, run *model.ScanRun) error {
	outcomes := make([]outcome, len(symbols))

	var (
		mu        sync.Mutex
		processed int
		matches   int
	)

	var g errgroup.Group
	g.SetLimit(s.Workers)
	for i, sym := range symbols {
		if ctx.Err() != nil {
			break
		}
		i, sym := i, sym
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, matched, err := s.evaluate(ctx, sym)

			mu.Lock()
			defer mu.Unlock()
			outcomes[i] = outcome{done: true, matched: matched, result: res, err: err}
			processed++
			if matched {
				matches++
			}
			emit(progress, model.ScanProgress{Processed: processed, Total: len(symbols), Matches: matches})
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if !o.done {
			continue
		}
		run.Processed++
		switch {
		case o.err != nil:
			run.Skipped++
			log.Printf("[WARN] skip %s: %v", symbols[i], o.err)
		case o.matched:
			run.Results = append(run.Results, o.result)
		}
	}
	return ctx.Err()
}

// evaluate fetches one symbol and classifies its latest bars.
// A nil error with matched=false means the symbol simply shows no setup.
func (s *Scanner) evaluate(ctx context.Context, symbol string) (model.ScanResult, bool, error) {
	bars, err := s.Fetcher.FetchDailyBars(ctx, symbol, s.lookback())
	if err != nil {
		return model.ScanResult{}, false, err
	}
	if len(bars) < MinBars {
		return model.ScanResult{}, false, fmt.Errorf("%w: %d bars", ErrInsufficientHistory, len(bars))
	}
	m, ok := setup.ClassifyWith(s.detectors(), bars)
	if !ok {
		return model.ScanResult{}, false, nil
	}
	return model.NewScanResult(symbol, m), true, nil
}

func (s *Scanner) lookback() int {
	if s.LookbackDays < MinBars {
		return DefaultLookbackDays
	}
	return s.LookbackDays
}

func (s *Scanner) detectors() []setup.Detector {
	if len(s.Detectors) > 0 {
		return s.Detectors
	}
	return setup.Detectors
}

func emit(progress ProgressFunc, p model.ScanProgress) {
	if progress != nil {
		progress(p)
	}
}
