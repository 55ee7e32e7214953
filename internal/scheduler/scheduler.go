package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/params"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/search"
	"SignalSentinel/internal/strategy"
)

// ErrSearchRunning is returned when an evolve run is requested while one is in progress.
var ErrSearchRunning = errors.New("search already running")

// Notifier delivers messages to the operator.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// SearchSettings configures the evolve job's grid search.
type SearchSettings struct {
	Ranges         search.Ranges
	MinSuccessRate float64
	Workers        int
	ProgressEvery  int
}

// Scheduler manages the cron jobs and operator commands.
type Scheduler struct {
	Cron     *cron.Cron
	Source   collector.Source
	Params   *params.Store
	Engine   *strategy.Engine
	Search   SearchSettings
	Notifier Notifier
	Recorder recorder.Recorder
	Symbol   string
	Ctx      context.Context

	// AlertMinSuccessRate is the success rate at or above which the alert job notifies.
	AlertMinSuccessRate float64

	searching sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, src collector.Source, store *params.Store, engine *strategy.Engine,
	n Notifier, rec recorder.Recorder, symbol string) *Scheduler {
	return &Scheduler{
		Cron:                cron.New(cron.WithSeconds()),
		Source:              src,
		Params:              store,
		Engine:              engine,
		Search:              SearchSettings{Ranges: search.DefaultRanges(), MinSuccessRate: 90},
		Notifier:            n,
		Recorder:            rec,
		Symbol:              symbol,
		Ctx:                 ctx,
		AlertMinSuccessRate: 90,
	}
}

// RegisterAll registers the alert and evolve jobs.
func (s *Scheduler) RegisterAll(alertCron, evolveCron string) error {
	if _, err := s.Cron.AddFunc(alertCron, s.alertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	if _, err := s.Cron.AddFunc(evolveCron, s.evolveTask); err != nil {
		return fmt.Errorf("register evolve task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunAlertNow executes the alert job immediately (RUN_ON_START).
func (s *Scheduler) RunAlertNow() {
	s.alertTask()
}

func (s *Scheduler) alertTask() {
	log.Println("[INFO] running alert task")
	ev, err := s.Evaluate(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] alert evaluate: %v", err)
		s.trySend(fmt.Sprintf("❌ Alert evaluation failed: %v", err))
		return
	}
	res := ev.Result
	if !ev.HasTrade {
		log.Printf("[INFO] no trade realized for %+v", res.Params)
		s.record(recorder.SourceAlert, ev, false)
		return
	}
	metrics.LastSuccessRate.Set(res.SuccessRatePct)

	alerted := res.SuccessRatePct >= s.AlertMinSuccessRate
	if alerted {
		s.trySend(notifier.FormatSignalAlert(s.Symbol, res))
	} else {
		log.Printf("[INFO] success rate %.2f%% below alert threshold %.2f%%", res.SuccessRatePct, s.AlertMinSuccessRate)
	}
	s.record(recorder.SourceAlert, ev, alerted)
}

func (s *Scheduler) evolveTask() {
	log.Println("[INFO] running evolve task")
	out, err := s.Evolve(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] evolve: %v", err)
		if !errors.Is(err, ErrSearchRunning) {
			s.trySend(fmt.Sprintf("❌ Strategy search failed: %v", err))
		}
		return
	}
	s.trySend(notifier.FormatSearchOutcome(s.Symbol, out))
}

// Evaluation is the stored parameter set evaluated on current data.
type Evaluation struct {
	Result   model.Result
	HasTrade bool
	Bars     int
}

// Evaluate backtests the stored parameter set on freshly loaded data.
func (s *Scheduler) Evaluate(ctx context.Context) (*Evaluation, error) {
	series, err := s.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Source.Name(), err)
	}
	p, _ := s.Params.Load()
	res, ok, err := s.Engine.Evaluate(series, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		res = model.Result{Params: p}
	}
	return &Evaluation{Result: res, HasTrade: ok, Bars: series.Len()}, nil
}

// Evolve runs the grid search and saves the best parameter set.
// Only one search runs at a time.
func (s *Scheduler) Evolve(ctx context.Context) (*search.Outcome, error) {
	if !s.searching.TryLock() {
		return nil, ErrSearchRunning
	}
	defer s.searching.Unlock()

	series, err := s.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Source.Name(), err)
	}

	d := search.NewDriver(s.Engine, s.Search.Ranges)
	d.Qualify = search.MinSuccessRate(s.Search.MinSuccessRate)
	if s.Search.Workers > 0 {
		d.Workers = s.Search.Workers
	}
	if s.Search.ProgressEvery > 0 {
		d.ProgressEvery = s.Search.ProgressEvery
	}
	d.Progress = func(current, total int) {
		log.Printf("[INFO] search progress %d/%d", current, total)
	}

	out, runErr := d.Run(ctx, series)
	if out != nil {
		s.recordRun(out, runErr)
	}
	if runErr != nil {
		return out, runErr
	}
	if out.Found() {
		if err := s.Params.Save(out.Best.Params); err != nil {
			return out, fmt.Errorf("save best params: %w", err)
		}
		log.Printf("[INFO] saved best params %+v (%.2f%%)", out.Best.Params, out.Best.SuccessRatePct)
	} else {
		log.Println("[INFO] no strategy qualified, keeping current params")
	}
	return out, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd := strings.Fields(command)
	if len(cmd) == 0 {
		return notifier.FormatHelp()
	}
	// Commands in groups may carry the bot name: /evolve@SomeBot.
	name, _, _ := strings.Cut(cmd[0], "@")
	switch name {
	case "/config":
		p, stored := s.Params.Load()
		return notifier.FormatParams(p, stored, s.Params.Path())
	case "/evaluate":
		ev, err := s.Evaluate(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Evaluation failed: %v", err)
		}
		s.record(recorder.SourceCommand, ev, false)
		return notifier.FormatEvaluation(s.Symbol, ev.Result, ev.HasTrade)
	case "/evolve":
		if !s.searchIdle() {
			return "⏳ A strategy search is already running"
		}
		go s.evolveTask()
		return fmt.Sprintf("🧬 Strategy search started (%d combinations)", s.Search.Ranges.Size())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) searchIdle() bool {
	if !s.searching.TryLock() {
		return false
	}
	s.searching.Unlock()
	return true
}

func (s *Scheduler) record(source string, ev *Evaluation, alerted bool) {
	if err := s.Recorder.RecordEvaluation(&recorder.EvaluationRecord{
		Source:   source,
		Symbol:   s.Symbol,
		Bars:     ev.Bars,
		Result:   ev.Result,
		HasTrade: ev.HasTrade,
		Alerted:  alerted,
	}); err != nil {
		log.Printf("[ERROR] record evaluation: %v", err)
	}
}

func (s *Scheduler) recordRun(out *search.Outcome, runErr error) {
	run := &recorder.SearchRun{
		RunID:      out.RunID,
		Symbol:     s.Symbol,
		Total:      out.Total,
		Evaluated:  out.Evaluated,
		Qualified:  len(out.Qualified),
		Best:       out.Best,
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
	}
	if runErr != nil {
		run.Err = runErr.Error()
	}
	if err := s.Recorder.RecordSearchRun(run); err != nil {
		log.Printf("[ERROR] record search run: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
