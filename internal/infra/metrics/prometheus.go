// Package metrics records run and cache counters in Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

// Recorder implements usecase.Metrics.
type Recorder struct {
	gatherer prometheus.Gatherer

	runEvents   *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	runsPruned  prometheus.Counter
}

// NewRecorder registers the SimDesk collectors on a fresh registry.
func NewRecorder() *Recorder {
	return NewRecorderWith(prometheus.NewRegistry())
}

// NewRecorderWith registers the collectors on reg.
func NewRecorderWith(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		runEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "simdesk_run_events_total",
			Help: "Number of run lifecycle events by type.",
		}, []string{"type"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "simdesk_run_cache_hits_total",
			Help: "Number of run lookups served from the cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "simdesk_run_cache_misses_total",
			Help: "Number of run lookups that missed the cache.",
		}),
		runsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "simdesk_runs_pruned_total",
			Help: "Number of runs deleted by history retention.",
		}),
	}
}

func (r *Recorder) RunEvent(t simulation.EventType) { r.runEvents.WithLabelValues(string(t)).Inc() }
func (r *Recorder) CacheHit()                       { r.cacheHits.Inc() }
func (r *Recorder) CacheMiss()                      { r.cacheMisses.Inc() }

// RunsPruned adds n to the pruned counter. Non-positive values are ignored.
func (r *Recorder) RunsPruned(n int) {
	if n > 0 {
		r.runsPruned.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
