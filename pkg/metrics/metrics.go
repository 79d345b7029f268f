package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run results used as the "result" label.
const (
	ResultDone    = "done"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Config holds metrics export settings.
type Config struct {
	PushgatewayURL string `env:"METRICS_PUSHGATEWAY_URL"`
	Job            string `env:"METRICS_JOB" envDefault:"reindexer"`
}

// Recorder owns a private registry with the reindex collectors.
type Recorder struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	records       *prometheus.GaugeVec
	phaseDuration *prometheus.HistogramVec
	lastSuccess   *prometheus.GaugeVec
}

// New creates a Recorder. withRuntime adds Go and process collectors, which
// only make sense for the long-lived scheduler.
func New(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reindex_runs_total",
			Help: "Finished reindex runs by entity and result.",
		}, []string{"entity", "result"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reindex_records",
			Help: "Record counts of the most recent run by entity and kind.",
		}, []string{"entity", "kind"}),
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reindex_phase_duration_seconds",
			Help:    "Duration of reindex pipeline phases.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}, []string{"entity", "phase"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reindex_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run by entity.",
		}, []string{"entity"}),
	}
	r.registry.MustRegister(r.runs, r.records, r.phaseDuration, r.lastSuccess)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// RunFinished counts a run and stamps the success time for done runs.
func (r *Recorder) RunFinished(entity, result string) {
	r.runs.WithLabelValues(entity, result).Inc()
	if result == ResultDone {
		r.lastSuccess.WithLabelValues(entity).SetToCurrentTime()
	}
}

// Records sets the count of one record kind (extracted, indexed, failed).
func (r *Recorder) Records(entity, kind string, n int) {
	r.records.WithLabelValues(entity, kind).Set(float64(n))
}

// PhaseDuration observes how long a phase took.
func (r *Recorder) PhaseDuration(entity, phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(entity, phase).Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Push sends the current values to a Pushgateway. One-shot runs use it since
// nothing scrapes them.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return ErrNoPushgateway
	}
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return errors.Join(ErrPushFailed, err)
	}
	return nil
}
