// Package metrics exposes Prometheus collectors for the evaluation engine and
// its collaborators.
package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_evaluations_total",
		Help: "Parameter tuples evaluated by grid searches.",
	})
	QualifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_qualified_total",
		Help: "Evaluations that met the qualification rule.",
	})
	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_search_duration_seconds",
		Help:    "Wall time of a full grid search.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_notifications_total",
		Help: "Telegram notifications by outcome.",
	}, []string{"status"})
	LastSuccessRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sentinel_last_success_rate_pct",
		Help: "Success rate of the latest scheduled evaluation.",
	})
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}
