package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/params"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/report"
	"SignalSentinel/internal/search"
	"SignalSentinel/internal/strategy"
)

const usage = `usage: cli <command> [flags]

commands:
  backtest   evaluate one parameter set and print the trade report
  evolve     grid-search the parameter space and save the best set
  fetch      download hourly bars to CSV or Parquet

run "cli <command> -h" for flags`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "backtest":
		err = runBacktest(ctx, os.Args[2:])
	case "evolve":
		err = runEvolve(ctx, os.Args[2:])
	case "fetch":
		err = runFetch(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, collector.ErrInvalidSchema) {
			log.Fatalf("[FATAL] input data rejected (need datetime, close and volume columns): %v", err)
		}
		log.Fatalf("[FATAL] %s: %v", os.Args[1], err)
	}
}

// common holds the flags every data-consuming command shares.
type common struct {
	configPath string
	dataPath   string
	format     string
	symbol     string
}

func (c *common) register(fs *flag.FlagSet) {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	fs.StringVar(&c.configPath, "config", def, "config file")
	fs.StringVar(&c.dataPath, "data", "", "CSV or Parquet bar file (overrides data.path; empty fetches from Yahoo)")
	fs.StringVar(&c.format, "format", "", "data format: csv or parquet (default: from extension)")
	fs.StringVar(&c.symbol, "symbol", "", "symbol (overrides data.symbol)")
}

// load reads config and applies the command-line overrides.
func (c *common) load() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.dataPath != "" {
		cfg.Data.Path = c.dataPath
	}
	if c.format != "" {
		cfg.Data.Format = c.format
	}
	if c.symbol != "" {
		cfg.Data.Symbol = c.symbol
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newEngine(cfg *config.Config) *strategy.Engine {
	return &strategy.Engine{
		RSIPeriod:    cfg.Strategy.RSIPeriod,
		VolumeWindow: cfg.Strategy.VolumeWindow,
		Horizon:      cfg.Strategy.Horizon,
	}
}

func newSource(cfg *config.Config) (collector.Source, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return collector.NewSource(cfg.Data.Path, cfg.Data.Format, cfg.Data.Symbol, cfg.Data.Range, cfg.Proxy, loc), nil
}

func newRecorder(cfg *config.Config, enabled bool) recorder.Recorder {
	if !enabled || cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func runBacktest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	var c common
	c.register(fs)
	def := model.DefaultParams
	rsi := fs.Float64("rsi", def.RSIThreshold, "RSI threshold (overrides stored config)")
	vol := fs.Float64("vol", def.VolumeMultiplier, "volume multiplier (overrides stored config)")
	hourStart := fs.Int("hour-start", def.HourStart, "first entry hour (overrides stored config)")
	hourEnd := fs.Int("hour-end", def.HourEnd, "last entry hour (overrides stored config)")
	out := fs.String("out", "", "write the trade ledger CSV here")
	save := fs.Bool("save", false, "save the evaluated params as the stored config")
	notify := fs.Bool("notify", false, "send a Telegram alert when the success rate clears alert.min_success_rate")
	record := fs.Bool("record", false, "record the evaluation to SQLite")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.load()
	if err != nil {
		return err
	}
	store := params.NewStore(cfg.Strategy.File)
	p, _ := store.Load()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rsi":
			p.RSIThreshold = *rsi
		case "vol":
			p.VolumeMultiplier = *vol
		case "hour-start":
			p.HourStart = *hourStart
		case "hour-end":
			p.HourEnd = *hourEnd
		}
	})
	if err := p.Validate(); err != nil {
		return err
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	series, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}

	bt, err := newEngine(cfg).Run(series, p)
	if err != nil {
		return err
	}
	if !bt.HasResult {
		bt.Result.Params = p
	}
	if err := report.Write(os.Stdout, series, bt); err != nil {
		return err
	}

	if *out != "" {
		if err := report.WriteLedgerCSV(*out, bt.Trades); err != nil {
			return err
		}
		log.Printf("[INFO] wrote %d trades to %s", len(bt.Trades), *out)
	}
	if *save {
		if err := store.Save(p); err != nil {
			return fmt.Errorf("save params: %w", err)
		}
		log.Printf("[INFO] saved params to %s", store.Path())
	}

	alerted := false
	if *notify && bt.HasResult && bt.Result.SuccessRatePct >= cfg.Alert.MinSuccessRate {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err := tn.SendWithRetry(ctx, notifier.FormatSignalAlert(cfg.Data.Symbol, bt.Result), 3); err != nil {
			log.Printf("[ERROR] send alert: %v", err)
		} else {
			alerted = tn.Enabled()
		}
	}

	rec := newRecorder(cfg, *record)
	defer rec.Close()
	if err := rec.RecordEvaluation(&recorder.EvaluationRecord{
		Source:   recorder.SourceBacktest,
		Symbol:   cfg.Data.Symbol,
		Bars:     series.Len(),
		Result:   bt.Result,
		HasTrade: bt.HasResult,
		Alerted:  alerted,
	}); err != nil {
		log.Printf("[ERROR] record evaluation: %v", err)
	}
	return nil
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ExitOnError)
	var c common
	c.register(fs)
	workers := fs.Int("workers", 0, "worker goroutines (default: search.workers or one per CPU)")
	minRate := fs.Float64("min-success", 0, "minimum success rate to qualify (default: search.min_success_rate)")
	top := fs.Int("top", 5, "qualified results to print")
	noSave := fs.Bool("no-save", false, "do not save the best params")
	notify := fs.Bool("notify", false, "announce the outcome on Telegram")
	notifyEach := fs.Bool("notify-each", false, "send a Telegram alert for every qualifying result")
	record := fs.Bool("record", false, "record the run to SQLite")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.load()
	if err != nil {
		return err
	}
	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	series, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}

	d := search.NewDriver(newEngine(cfg), cfg.Search.Ranges)
	rate := cfg.Search.MinSuccessRate
	if *minRate > 0 {
		rate = *minRate
	}
	d.Qualify = search.MinSuccessRate(rate)
	if cfg.Search.Workers > 0 {
		d.Workers = cfg.Search.Workers
	}
	if *workers > 0 {
		d.Workers = *workers
	}
	d.ProgressEvery = cfg.Search.ProgressEvery
	d.Progress = func(current, total int) {
		log.Printf("[INFO] testing... (%d/%d)", current, total)
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	var sink *notifier.AlertSink
	if *notifyEach {
		sink = notifier.NewAlertSink(tn, cfg.Data.Symbol, notifier.DefaultSinkQueue)
		d.Sink = sink
	}

	log.Printf("[INFO] searching %d combinations over %d bars with %d workers", d.Ranges.Size(), series.Len(), d.Workers)
	out, runErr := d.Run(ctx, series)
	if sink != nil {
		sink.Close()
	}

	rec := newRecorder(cfg, *record)
	defer rec.Close()
	if out != nil {
		run := &recorder.SearchRun{
			RunID: out.RunID, Symbol: cfg.Data.Symbol,
			Total: out.Total, Evaluated: out.Evaluated, Qualified: len(out.Qualified), Best: out.Best,
			StartedAt: out.StartedAt, FinishedAt: out.FinishedAt,
		}
		if runErr != nil {
			run.Err = runErr.Error()
		}
		if err := rec.RecordSearchRun(run); err != nil {
			log.Printf("[ERROR] record search run: %v", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	printOutcome(out, *top)

	if out.Found() && !*noSave {
		store := params.NewStore(cfg.Strategy.File)
		if err := store.Save(out.Best.Params); err != nil {
			return fmt.Errorf("save best params: %w", err)
		}
		log.Printf("[INFO] saved best params to %s", store.Path())
	}
	if *notify {
		if err := tn.SendWithRetry(ctx, notifier.FormatSearchOutcome(cfg.Data.Symbol, out), 3); err != nil {
			log.Printf("[ERROR] send outcome: %v", err)
		}
	}
	return nil
}

func printOutcome(out *search.Outcome, top int) {
	fmt.Printf("Evaluated %d/%d combinations, %d qualified (run %s)\n",
		out.Evaluated, out.Total, len(out.Qualified), out.RunID)
	if !out.Found() {
		fmt.Println("No qualifying strategy found.")
		return
	}
	b := out.Best
	fmt.Printf("Best: RSI < %g, volume > %gx, hours %02d-%02d -> success %.2f%%, avg return %.2f%%, %d trades\n",
		b.Params.RSIThreshold, b.Params.VolumeMultiplier, b.Params.HourStart, b.Params.HourEnd,
		b.SuccessRatePct, b.AvgReturnPct, b.TradeCount)
	for i, r := range out.Qualified {
		if i >= top {
			break
		}
		fmt.Printf("%2d. rsi=%-4g vol=%-4g hours=%02d-%02d success=%6.2f%% avg=%6.2f%% trades=%d\n",
			i+1, r.Params.RSIThreshold, r.Params.VolumeMultiplier, r.Params.HourStart, r.Params.HourEnd,
			r.SuccessRatePct, r.AvgReturnPct, r.TradeCount)
	}
}

func runFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var c common
	c.register(fs)
	rng := fs.String("range", "", "Yahoo range, e.g. 60d or 730d (default: data.range)")
	out := fs.String("out", "", "output file (.csv or .parquet)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("-out is required")
	}

	cfg, err := c.load()
	if err != nil {
		return err
	}
	if *rng == "" {
		*rng = cfg.Data.Range
	}

	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	bars, err := fetcher.FetchHourlyBars(ctx, cfg.Data.Symbol, *rng)
	if err != nil {
		return err
	}

	format := strings.ToLower(c.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(*out)), ".")
	}
	switch format {
	case "csv":
		err = collector.WriteCSVFile(*out, bars)
	case "parquet":
		err = collector.WriteParquetFile(*out, bars)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	log.Printf("[INFO] wrote %d bars for %s to %s", len(bars), cfg.Data.Symbol, *out)
	return nil
}
