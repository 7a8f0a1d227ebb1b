package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SetupScanner/internal/collector"
	"SetupScanner/internal/config"
	"SetupScanner/internal/model"
	"SetupScanner/internal/notifier"
	"SetupScanner/internal/recorder"
	"SetupScanner/internal/report"
	"SetupScanner/internal/scanner"
	"SetupScanner/internal/scheduler"
	"SetupScanner/internal/symbols"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := flag.String("config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	once := flag.Bool("once", false, "run a single scan, print the table and exit")
	flag.Parse()

	log.Println("[INFO] SetupScanner starting...")

	config.LoadEnv(".env.local", ".env")

	// Load config
	path := *cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderVsTrader:
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderMock:
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	if cfg.Cache.Path != "" {
		cf, err := collector.NewCachedFetcher(fetcher, cfg.Cache.Path, cfg.CacheTTL())
		if err != nil {
			log.Printf("[WARN] init bar cache failed, fetching directly: %v", err)
		} else {
			fetcher = cf
			defer cf.Close()
		}
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init symbol source
	var src symbols.Source
	if cfg.Symbols.Source != "" {
		src = symbols.NewCSVSource(cfg.Symbols.Source, cfg.Symbols.Column, cfg.Proxy)
	} else {
		src = symbols.StaticSource(cfg.Symbols.Static)
	}

	// Init notifier
	var n notifier.Notifier = notifier.NewNoopNotifier()
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[INFO] telegram not configured, notifications disabled")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	sc := scanner.NewScanner(fetcher, cfg.DataSource.LookbackDays, cfg.Scan.Workers)

	if *once {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		sched := scheduler.NewScheduler(ctx, sc, src, n, rec)
		sched.Tags = cfg.Symbols.Tags
		sched.CSVPath = cfg.Report.CSVPath
		if err := runOnce(ctx, sched); err != nil {
			log.Printf("[ERROR] scan: %v", err)
			stop()
			os.Exit(1)
		}
		return
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sc, src, n, rec)
	sched.Tags = cfg.Symbols.Tags
	sched.CSVPath = cfg.Report.CSVPath
	if err := sched.Register(cfg.Scan.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if cfg.Scan.RunOnStart {
		log.Println("[INFO] run_on_start enabled, executing scan now")
		go sched.RunNow()
	}

	log.Printf("[INFO] SetupScanner is running (cron %q). Press Ctrl+C to stop.", cfg.Scan.Cron)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] SetupScanner stopped")
}

// runOnce scans with a live progress bar and prints the result table.
func runOnce(ctx context.Context, sched *scheduler.Scheduler) error {
	var bar *report.ProgressBar
	progress := func(p model.ScanProgress) {
		if bar == nil {
			bar = report.NewProgressBar(os.Stdout, p.Total)
		}
		bar.Update(p)
	}

	run, err := sched.RunScan(ctx, progress)
	if bar != nil {
		bar.Stop()
	}
	if run != nil {
		report.RenderTable(os.Stdout, run.Results)
	}
	return err
}
