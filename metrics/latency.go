package metrics

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrsmuneton/iroha/libs/utils"
)

// LatencyTracker records how long BlockProcessor.Process spends per
// block, in milliseconds, and reports min/max/mean/avg over the
// observed window the way the teacher's rpc/consensus.go used
// libs/utils.{Max,Min,Mean,Avg} to summarize transaction latency.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []float64
	cap     int
}

// NewLatencyTracker builds a tracker that keeps at most windowSize most
// recent samples, discarding the oldest once full.
func NewLatencyTracker(windowSize int) *LatencyTracker {
	if windowSize <= 0 {
		windowSize = 1024
	}
	return &LatencyTracker{cap: windowSize}
}

// Observe records one latency sample.
func (t *LatencyTracker) Observe(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.samples) >= t.cap {
		t.samples = t.samples[1:]
	}
	t.samples = append(t.samples, ms)
}

// LatencySnapshot is the JSON shape reported by the rpc metrics
// endpoint for a LatencyTracker.
type LatencySnapshot struct {
	Count  int     `json:"count"`
	MinMS  float64 `json:"min_ms"`
	MaxMS  float64 `json:"max_ms"`
	MeanMS float64 `json:"mean_ms"`
	AvgMS  float64 `json:"avg_ms"`
}

// Snapshot summarizes the current window. A copy of the sample slice is
// taken under lock so utils.{Max,Min,Mean,Avg} (which sort.Float64s
// their argument in place for Mean) never race with Observe.
func (t *LatencyTracker) Snapshot() LatencySnapshot {
	t.mu.Lock()
	samples := make([]float64, len(t.samples))
	copy(samples, t.samples)
	t.mu.Unlock()

	if len(samples) == 0 {
		return LatencySnapshot{}
	}

	meanInput := make([]float64, len(samples))
	copy(meanInput, samples)

	return LatencySnapshot{
		Count:  len(samples),
		MinMS:  utils.Min(samples...),
		MaxMS:  utils.Max(samples...),
		MeanMS: utils.Mean(meanInput...),
		AvgMS:  utils.Avg(samples...),
	}
}

// JSONString implements Item.
func (t *LatencyTracker) JSONString() string {
	bz, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(t.Snapshot())
	if err != nil {
		return "{}"
	}
	return string(bz)
}

var _ Item = (*LatencyTracker)(nil)
