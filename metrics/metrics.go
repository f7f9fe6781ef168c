// Package metrics exposes a predictor's observable statistics (spec §6,
// "Observable statistics") as Prometheus counters/gauges, additive
// instrumentation over the in-process tage.Stats() snapshot that remains
// the source of truth. Grounded in the retrieval pack's use of
// github.com/prometheus/client_golang for internal subsystem counters.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/suprax-research/tagesim/tage"
)

// Recorder mirrors a Predictor's Stats() into a set of Prometheus
// collectors registered under a caller-chosen namespace. It holds no
// predictor reference and performs no polling of its own: callers drive
// it explicitly by calling Observe after every Update (or on whatever
// cadence they choose), matching the pack's pull-on-demand convention for
// internal counters rather than a background goroutine per predictor.
type Recorder struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	allocs   *prometheus.CounterVec
	allocOK  prometheus.Counter
	allocErr prometheus.Counter
	resets   prometheus.Counter
	clock    prometheus.Gauge
	resetCtr prometheus.Gauge
	storage  prometheus.Gauge
}

// NewRecorder builds a Recorder and registers its collectors against reg.
// numTagged is the predictor's component count (tage.Predictor has no
// exported accessor for it directly, so callers pass
// len(pred.TaggedHistoryLengths())).
func NewRecorder(reg prometheus.Registerer, namespace string, numTagged int) *Recorder {
	r := &Recorder{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "predictor_hits_total",
			Help: "Correct predictions, by providing component (base or tagged_<i>).",
		}, []string{"component"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "predictor_misses_total",
			Help: "Mispredictions, by providing component (base or tagged_<i>).",
		}, []string{"component"}),
		allocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "predictor_allocations_total",
			Help: "Successful allocations landing in each tagged component.",
		}, []string{"component"}),
		allocOK: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "predictor_allocation_success_total",
			Help: "Total successful allocation attempts.",
		}),
		allocErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "predictor_allocation_failure_total",
			Help: "Total failed allocation attempts (no eligible candidate).",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "predictor_useful_resets_total",
			Help: "Number of periodic usefulness-bit resets.",
		}),
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "predictor_update_clock",
			Help: "Current predictor update clock value.",
		}),
		resetCtr: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "predictor_reset_ctr",
			Help: "Current 8-bit reset counter value.",
		}),
		storage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "predictor_storage_bits",
			Help: "Approximate total predictor storage footprint in bits.",
		}),
	}

	reg.MustRegister(r.hits, r.misses, r.allocs, r.allocOK, r.allocErr, r.resets, r.clock, r.resetCtr, r.storage)

	// Pre-create the zero-valued series for every known component so
	// dashboards don't show gaps before the first hit/miss/allocation.
	for i := 0; i <= numTagged; i++ {
		label := componentLabel(i)
		r.hits.WithLabelValues(label)
		r.misses.WithLabelValues(label)
		if i > 0 {
			r.allocs.WithLabelValues(label)
		}
	}

	return r
}

func componentLabel(i int) string {
	if i == 0 {
		return "base"
	}
	return "tagged_" + strconv.Itoa(i-1)
}

// ObserverState tracks the cumulative values last mirrored into a
// Recorder, so repeated Observe calls can convert tage.Stats' cumulative
// totals into the deltas Prometheus counters expect (prometheus.Counter
// has no "Set", only "Add"). The caller owns one ObserverState per
// predictor and must reuse it across calls; a fresh ObserverState would
// double-count history as a burst on the first Observe.
type ObserverState struct {
	hits, misses, allocs []uint64
	allocOK, allocErr    uint64
	resets               uint64
}

// NewObserverState returns a zero-valued ObserverState for use with
// Observe, starting from a predictor's clock-zero state.
func NewObserverState() *ObserverState {
	return &ObserverState{}
}

// Observe mirrors a Stats snapshot into the recorder's collectors,
// converting cumulative totals into deltas against last.
func (r *Recorder) Observe(s tage.Stats, last *ObserverState) {
	if last.hits == nil {
		last.hits = make([]uint64, len(s.Hits))
		last.misses = make([]uint64, len(s.Misses))
		last.allocs = make([]uint64, len(s.AllocationsByComponent))
	}

	for i, v := range s.Hits {
		r.hits.WithLabelValues(componentLabel(i)).Add(float64(v - last.hits[i]))
		last.hits[i] = v
	}
	for i, v := range s.Misses {
		r.misses.WithLabelValues(componentLabel(i)).Add(float64(v - last.misses[i]))
		last.misses[i] = v
	}
	for i, v := range s.AllocationsByComponent {
		r.allocs.WithLabelValues(componentLabel(i + 1)).Add(float64(v - last.allocs[i]))
		last.allocs[i] = v
	}

	r.allocOK.Add(float64(s.AllocSuccess - last.allocOK))
	last.allocOK = s.AllocSuccess
	r.allocErr.Add(float64(s.AllocFailure - last.allocErr))
	last.allocErr = s.AllocFailure
	r.resets.Add(float64(s.UsefulResets - last.resets))
	last.resets = s.UsefulResets

	r.clock.Set(float64(s.UpdateClock))
	r.resetCtr.Set(float64(s.ResetCtr))
	r.storage.Set(float64(s.StorageBits))
}
