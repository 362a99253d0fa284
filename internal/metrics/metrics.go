// Package metrics provides Prometheus metrics for the panel engine.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics owns a private registry so several engines (and tests) can coexist
// in one process. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	refreshesTotal   *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	bulkItemsTotal   *prometheus.CounterVec
	fileOpsTotal     *prometheus.CounterVec
	watchLostTotal   prometheus.Counter
	tagEntries       prometheus.Gauge
	clipboardPending prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		refreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpanes_refreshes_total",
				Help: "Total panel listing refreshes",
			},
			[]string{"status"},
		),
		refreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rpanes_refresh_duration_seconds",
				Help:    "Time to rebuild one panel listing",
				Buckets: prometheus.DefBuckets,
			},
		),
		bulkItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpanes_bulk_items_total",
				Help: "Items processed by bulk file operations",
			},
			[]string{"operation", "status"},
		),
		fileOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpanes_file_operations_total",
				Help: "Single file operations by kind of outcome",
			},
			[]string{"operation", "result"},
		),
		watchLostTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rpanes_watch_lost_total",
				Help: "Watches stopped because the watched directory disappeared",
			},
		),
		tagEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rpanes_tag_entries",
				Help: "Number of tagged paths in the tag store",
			},
		),
		clipboardPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rpanes_clipboard_pending",
				Help: "1 while a copy or cut is pending",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRefresh records one listing refresh.
func (m *Metrics) RecordRefresh(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.refreshesTotal.WithLabelValues(status(err == nil)).Inc()
	m.refreshDuration.Observe(duration.Seconds())
}

// RecordBulk records the outcome of one bulk operation.
func (m *Metrics) RecordBulk(operation string, succeeded, failed int) {
	if m == nil {
		return
	}
	m.bulkItemsTotal.WithLabelValues(operation, "success").Add(float64(succeeded))
	m.bulkItemsTotal.WithLabelValues(operation, "error").Add(float64(failed))
}

// RecordFileOp records a single copy, move, delete or rename. result is the
// error kind, or "ok".
func (m *Metrics) RecordFileOp(operation, result string) {
	if m == nil {
		return
	}
	m.fileOpsTotal.WithLabelValues(operation, result).Inc()
}

// RecordWatchLost counts a lost watch.
func (m *Metrics) RecordWatchLost() {
	if m == nil {
		return
	}
	m.watchLostTotal.Inc()
}

// SetTagEntries sets the current tag store size.
func (m *Metrics) SetTagEntries(n int) {
	if m == nil {
		return
	}
	m.tagEntries.Set(float64(n))
}

// SetClipboardPending records whether a clipboard entry is pending.
func (m *Metrics) SetClipboardPending(pending bool) {
	if m == nil {
		return
	}
	if pending {
		m.clipboardPending.Set(1)
	} else {
		m.clipboardPending.Set(0)
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
