package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"SetupScanner/internal/model"
	"SetupScanner/internal/notifier"
	"SetupScanner/internal/recorder"
	"SetupScanner/internal/report"
	"SetupScanner/internal/scanner"
	"SetupScanner/internal/symbols"

	"github.com/robfig/cron/v3"
)

// ErrScanInProgress is returned when a scan is requested while another one runs.
var ErrScanInProgress = errors.New("scan already in progress")

// Scheduler runs scans on a cron schedule and on chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Source   symbols.Source
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Tags     []string // optional listing tag filter
	CSVPath  string   // optional CSV export after each scan
	Ctx      context.Context

	running atomic.Bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, src symbols.Source, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Source:   src,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// Register registers the scan task on the given cron expression (seconds field included).
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a scan immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	if _, err := s.RunScan(s.Ctx, nil); err != nil {
		if errors.Is(err, ErrScanInProgress) {
			log.Println("[WARN] scan skipped: previous scan still running")
			return
		}
		log.Printf("[ERROR] scan: %v", err)
	}
}

// RunScan loads the symbol list, scans it, records the run and sends the report.
// Only one scan runs at a time.
func (s *Scheduler) RunScan(ctx context.Context, progress scanner.ProgressFunc) (*model.ScanRun, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.running.Store(false)

	log.Println("[INFO] running scan")
	tickers, err := s.loadSymbols(ctx)
	if err != nil {
		s.trySend(ctx, fmt.Sprintf("❌ Scan failed: %v", err))
		return nil, err
	}

	run, err := s.Scanner.Run(ctx, tickers, progress)
	if err != nil {
		return run, fmt.Errorf("run scan: %w", err)
	}

	if err := s.Recorder.RecordScan(run); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
	s.trySend(ctx, notifier.FormatScanReport(run))

	if s.CSVPath != "" {
		if err := report.ExportCSV(s.CSVPath, run.Results); err != nil {
			log.Printf("[ERROR] export csv: %v", err)
		} else {
			log.Printf("[INFO] results exported to %s", s.CSVPath)
		}
	}
	return run, nil
}

func (s *Scheduler) loadSymbols(ctx context.Context) ([]string, error) {
	listings, err := s.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	listings = symbols.FilterByTags(listings, s.Tags)
	tickers := symbols.Symbols(listings)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("load symbols: %w", symbols.ErrEmpty)
	}
	log.Printf("[INFO] loaded %d symbols", len(tickers))
	return tickers, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		if s.running.Load() {
			return "⏳ A scan is already running."
		}
		go s.scanTask()
		return "🔎 Scan started."
	case "/last":
		run, err := s.Recorder.LatestScan()
		if err != nil {
			log.Printf("[ERROR] load latest scan: %v", err)
			return "❌ Could not load the latest scan."
		}
		if run == nil {
			return "No scans recorded yet."
		}
		return notifier.FormatScanReport(run)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
