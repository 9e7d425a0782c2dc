package statsd

import (
	"sync"
	"time"
)

// Sample is one metric captured by a Recorder.
type Sample struct {
	Name     string
	Value    int64
	Duration time.Duration
	Tags     map[string]string
}

// Recorder is an in-memory Sink for tests.
type Recorder struct {
	mu      sync.Mutex
	counts  []Sample
	timings []Sample
}

var _ Sink = (*Recorder)(nil)

// Count records a counter sample.
func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, Sample{Name: name, Value: value, Tags: cloneTags(tags)})
}

// Timing records a timing sample.
func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timings = append(r.timings, Sample{Name: name, Duration: value, Tags: cloneTags(tags)})
}

// Counts returns the counter samples recorded under name.
func (r *Recorder) Counts(name string) []Sample {
	return filter(r, name, func(r *Recorder) []Sample { return r.counts })
}

// Timings returns the timing samples recorded under name.
func (r *Recorder) Timings(name string) []Sample {
	return filter(r, name, func(r *Recorder) []Sample { return r.timings })
}

func filter(r *Recorder, name string, pick func(*Recorder) []Sample) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range pick(r) {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
