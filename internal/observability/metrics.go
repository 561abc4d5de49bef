// Package observability exports run metrics for the node-exporter textfile
// collector.
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "echosurvey"

// Metrics holds the Prometheus counters, histograms, and gauges for one
// command invocation. Each Metrics owns a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Items         *prometheus.CounterVec   // labels: stage, outcome={succeeded,failed,skipped}
	Failures      *prometheus.CounterVec   // labels: stage, class
	Artifacts     *prometheus.CounterVec   // labels: kind={netcdf,calibrated,summary_row,ping_plot,echogram,daily_track,tenday_track}
	RunDuration   *prometheus.HistogramVec // labels: command
	LastRunTime   *prometheus.GaugeVec     // labels: command
	SummaryRows   prometheus.Gauge
	ExtentSkipped prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Files or dates processed, by stage and outcome.",
		}, []string{"stage", "outcome"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_failures_total",
			Help:      "Per-item failures by stage and failure class.",
		}, []string{"stage", "class"}),
		Artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_written_total",
			Help:      "Output files written, by kind.",
		}, []string{"kind"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline command.",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
		}, []string{"command"}),
		LastRunTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the command last finished.",
		}, []string{"command"}),
		SummaryRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "summary_rows",
			Help:      "Rows present in the survey summary CSV after the run.",
		}),
		ExtentSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extent_groups_skipped_total",
			Help:      "Position groups left out of a map extent for missing data.",
		}),
	}

	m.registry.MustRegister(
		m.Items,
		m.Failures,
		m.Artifacts,
		m.RunDuration,
		m.LastRunTime,
		m.SummaryRows,
		m.ExtentSkipped,
	)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records the duration and completion time of a command.
func (m *Metrics) ObserveRun(command string, started, finished time.Time) {
	m.RunDuration.WithLabelValues(command).Observe(finished.Sub(started).Seconds())
	m.LastRunTime.WithLabelValues(command).Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry in text exposition format to path,
// replacing it atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
