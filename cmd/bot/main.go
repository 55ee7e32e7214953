package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/params"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalSentinel bot starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	src := collector.NewSource(cfg.Data.Path, cfg.Data.Format, cfg.Data.Symbol, cfg.Data.Range, cfg.Proxy, loc)
	log.Printf("[INFO] data source: %s", src.Name())

	store := params.NewStore(cfg.Strategy.File)
	engine := &strategy.Engine{
		RSIPeriod:    cfg.Strategy.RSIPeriod,
		VolumeWindow: cfg.Strategy.VolumeWindow,
		Horizon:      cfg.Strategy.Horizon,
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

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

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Addr != "" {
		go metrics.Serve(ctx, cfg.Metrics.Addr)
	}

	sched := scheduler.NewScheduler(ctx, src, store, engine, tn, rec, cfg.Data.Symbol)
	sched.AlertMinSuccessRate = cfg.Alert.MinSuccessRate
	sched.Search = scheduler.SearchSettings{
		Ranges:         cfg.Search.Ranges,
		MinSuccessRate: cfg.Search.MinSuccessRate,
		Workers:        cfg.Search.Workers,
		ProgressEvery:  cfg.Search.ProgressEvery,
	}
	if err := sched.RegisterAll(cfg.Schedule.AlertCron, cfg.Schedule.EvolveCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing alert task now")
		go sched.RunAlertNow()
	}

	log.Println("[INFO] SignalSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] SignalSentinel stopped")
}
