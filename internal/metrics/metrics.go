// Package metrics provides Prometheus metrics for hook dispatch and the photo index.
package metrics

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Hook dispatch outcomes.
const (
	OutcomeDispatched = "dispatched"
	OutcomeSkipped    = "skipped"
	OutcomeError      = "error"
)

var (
	hookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maps_hook_events_total",
			Help: "Total file and share hook events handled, by outcome",
		},
		[]string{"event", "outcome"},
	)

	photoIndexOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maps_photo_index_ops_total",
			Help: "Total photo index mutations",
		},
		[]string{"op"},
	)

	photoIndexEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maps_photo_index_entries_changed_total",
			Help: "Total photo index entries added or removed",
		},
		[]string{"change"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHookEvent records the outcome of one hook invocation.
func RecordHookEvent(event, outcome string) {
	hookEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordIndexOp records a photo index operation.
func RecordIndexOp(op string) {
	photoIndexOpsTotal.WithLabelValues(op).Inc()
}

// RecordEntriesAdded records photo entries written.
func RecordEntriesAdded(n int) {
	photoIndexEntries.WithLabelValues("added").Add(float64(n))
}

// RecordEntriesRemoved records photo entries deleted.
func RecordEntriesRemoved(n int) {
	photoIndexEntries.WithLabelValues("removed").Add(float64(n))
}

// Sample is one counter value of a maps_* metric.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers the current maps_* counters from the default registry.
func Snapshot() ([]Sample, error) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "maps_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			samples = append(samples, Sample{
				Name:   name,
				Labels: labels,
				Value:  m.GetCounter().GetValue(),
			})
		}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})
	return samples, nil
}
