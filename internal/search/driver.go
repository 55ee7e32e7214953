// Package search runs the strategy engine over a parameter grid and picks
// the best qualifying parameter set.
package search

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

// DefaultProgressEvery is how many tuples pass between progress reports.
const DefaultProgressEvery = 50

// ProgressFunc observes how many of total tuples have been evaluated.
type ProgressFunc func(current, total int)

// ResultSink receives every qualifying result as soon as it is known.
// Implementations must not block the search; slow I/O belongs in a goroutine.
type ResultSink interface {
	Consume(ctx context.Context, res model.Result)
}

// Qualifier decides whether a result is a strategy candidate.
type Qualifier func(res model.Result) bool

// LessFunc reports whether a ranks strictly ahead of b.
type LessFunc func(a, b model.Result) bool

// MinSuccessRate returns the stock qualifier: success rate >= min and a
// positive average return.
func MinSuccessRate(min float64) Qualifier {
	return func(res model.Result) bool { return strategy.Qualifies(res, min) }
}

// BySuccessRate ranks higher success rates first.
func BySuccessRate(a, b model.Result) bool {
	return a.SuccessRatePct > b.SuccessRatePct
}

// Driver evaluates every tuple of Ranges against one series.
type Driver struct {
	Engine        *strategy.Engine
	Ranges        Ranges
	Qualify       Qualifier
	Less          LessFunc
	Workers       int
	ProgressEvery int
	Progress      ProgressFunc
	Sink          ResultSink
}

// NewDriver creates a Driver with the stock qualifier, ranking and one worker per CPU.
func NewDriver(engine *strategy.Engine, ranges Ranges) *Driver {
	return &Driver{
		Engine:        engine,
		Ranges:        ranges,
		Qualify:       MinSuccessRate(90),
		Less:          BySuccessRate,
		Workers:       runtime.NumCPU(),
		ProgressEvery: DefaultProgressEvery,
	}
}

// Outcome is the result of one search run.
type Outcome struct {
	RunID      string
	Total      int
	Evaluated  int
	Qualified  []model.Result // ranked, best first
	Best       *model.Result  // nil when nothing qualified
	StartedAt  time.Time
	FinishedAt time.Time
}

// Found reports whether a qualifying strategy exists.
func (o *Outcome) Found() bool { return o.Best != nil }

type evaluation struct {
	index int
	res   model.Result
	ok    bool
}

// Run evaluates the grid. Cancelling ctx stops feeding new tuples; the
// partial outcome is returned together with the context error.
func (d *Driver) Run(ctx context.Context, series *model.Series) (*Outcome, error) {
	if err := d.Ranges.Validate(); err != nil {
		return nil, err
	}
	frame, err := d.Engine.Indicators(series)
	if err != nil {
		return nil, fmt.Errorf("build indicators: %w", err)
	}

	out := &Outcome{
		RunID:     uuid.NewString(),
		Total:     d.Ranges.Size(),
		StartedAt: time.Now(),
	}
	workers := d.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan int, workers)
	results := make(chan evaluation, workers)

	go func() {
		defer close(jobs)
		for i := 0; i < out.Total; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				res, ok := d.Engine.EvaluateFrame(series, frame, d.Ranges.At(i))
				results <- evaluation{index: i, res: res, ok: ok}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	every := d.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	progress := rate.Sometimes{Every: every}
	qualify := d.Qualify
	if qualify == nil {
		qualify = MinSuccessRate(90)
	}

	var hits []evaluation
	reported := 0
	for ev := range results {
		out.Evaluated++
		metrics.EvaluationsTotal.Inc()
		if ev.ok && qualify(ev.res) {
			hits = append(hits, ev)
			metrics.QualifiedTotal.Inc()
			if d.Sink != nil {
				d.Sink.Consume(ctx, ev.res)
			}
		}
		if d.Progress != nil {
			current := out.Evaluated
			progress.Do(func() {
				d.Progress(current, out.Total)
				reported = current
			})
		}
	}
	if d.Progress != nil && reported != out.Evaluated {
		d.Progress(out.Evaluated, out.Total)
	}

	out.Qualified = d.rank(hits)
	if len(out.Qualified) > 0 {
		best := out.Qualified[0]
		out.Best = &best
	}
	out.FinishedAt = time.Now()
	metrics.SearchDuration.Observe(out.FinishedAt.Sub(out.StartedAt).Seconds())

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("search stopped after %d/%d tuples: %w", out.Evaluated, out.Total, err)
	}
	return out, nil
}

// rank restores enumeration order, then stable-sorts so ties keep first-seen order.
func (d *Driver) rank(hits []evaluation) []model.Result {
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })
	ranked := make([]model.Result, len(hits))
	for i, h := range hits {
		ranked[i] = h.res
	}
	less := d.Less
	if less == nil {
		less = BySuccessRate
	}
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	return ranked
}
