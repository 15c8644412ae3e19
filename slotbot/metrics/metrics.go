// Package metrics exposes slot activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ellavondegurechaff/slotbot/internal/domain/slots"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	created     *prometheus.CounterVec
	revoked     *prometheus.CounterVec
	transferred prometheus.Counter
	mentions    *prometheus.CounterVec
	sweeps      *prometheus.HistogramVec
	sweepFailed *prometheus.CounterVec
}

var _ slots.Observer = (*Metrics)(nil)

// New registers the slot metrics on reg. liveSlots is sampled on every scrape.
func New(reg prometheus.Registerer, liveSlots func() int) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		created: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbot_slots_created_total",
			Help: "Slots created, split by whether they came from a recovery key",
		}, []string{"source"}),
		revoked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbot_slots_revoked_total",
			Help: "Slots revoked, by reason",
		}, []string{"reason"}),
		transferred: f.NewCounter(prometheus.CounterOpts{
			Name: "slotbot_slots_transferred_total",
			Help: "Slots handed to a new owner",
		}),
		mentions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbot_mentions_total",
			Help: "Broadcast mentions inspected in slot channels, by resulting action",
		}, []string{"action"}),
		sweeps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slotbot_sweep_duration_seconds",
			Help:    "Duration of expiry and reminder sweeps",
			Buckets: prometheus.DefBuckets,
		}, []string{"sweep"}),
		sweepFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slotbot_sweep_failures_total",
			Help: "Per-slot failures during sweeps",
		}, []string{"sweep"}),
	}
	if liveSlots != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "slotbot_live_slots",
			Help: "Slots currently registered",
		}, func() float64 { return float64(liveSlots()) })
	}
	return m
}

func (m *Metrics) SlotCreated(restored bool) {
	source := "command"
	if restored {
		source = "restore"
	}
	m.created.WithLabelValues(source).Inc()
}

func (m *Metrics) SlotRevoked(reason string) {
	switch reason {
	case slots.ReasonExpired, slots.ReasonEveryone, slots.ReasonHereLimit:
	default:
		// free-text admin reasons would blow up label cardinality
		reason = "manual"
	}
	m.revoked.WithLabelValues(reason).Inc()
}

func (m *Metrics) SlotTransferred() {
	m.transferred.Inc()
}

func (m *Metrics) MentionInspected(v slots.Verdict) {
	m.mentions.WithLabelValues(v.Action.String()).Inc()
}

func (m *Metrics) SweepFinished(sweep string, report slots.SweepReport, took time.Duration) {
	m.sweeps.WithLabelValues(sweep).Observe(took.Seconds())
	if report.Failed > 0 {
		m.sweepFailed.WithLabelValues(sweep).Add(float64(report.Failed))
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Metrics endpoint listening", slog.String("type", "sys"), slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics endpoint failed", slog.String("type", "error"), slog.Any("error", err))
	}
}
