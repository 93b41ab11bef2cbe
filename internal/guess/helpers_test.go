package guess

import (
	"sort"
	"strings"
	"sync"

	"csvguess/internal/metrics"
)

// recordingBackend keeps counter totals keyed by name and sorted labels.
type recordingBackend struct {
	mu       sync.Mutex
	counters map[string]float64
	observed map[string]int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{counters: map[string]float64{}, observed: map[string]int{}}
}

func counterKey(name string, labels metrics.Labels) string {
	parts := make([]string, 0, len(labels))
	for k, v := range labels {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return name + "{" + strings.Join(parts, ",") + "}"
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[counterKey(name, labels)] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, _ float64, _ metrics.Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed[name]++
}

func (r *recordingBackend) get(name string, labels metrics.Labels) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[counterKey(name, labels)]
}

// total sums a counter across all label sets.
func (r *recordingBackend) total(name string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n float64
	for k, v := range r.counters {
		if strings.HasPrefix(k, name+"{") {
			n += v
		}
	}
	return n
}

func sp(s string) *string { return &s }

func row(vals ...string) []*string {
	out := make([]*string, len(vals))
	for i := range vals {
		out[i] = sp(vals[i])
	}
	return out
}
