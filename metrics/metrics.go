// Package metrics adapts the dispatcher's go-metrics counters into a
// JSON-snapshottable registry for the rpc status endpoint, and carries
// the label -> Item registry (Set) that endpoint walks.
//
// Set/Item started life as the teacher's libs/metric.MetricSet/
// MetricItem (label -> JSONString() item); folded into this package
// since every implementation of Item now lives here too (Collector,
// LatencyTracker) rather than as a standalone leaf package with nothing
// of its own to adapt.
package metrics

import (
	gometrics "github.com/rcrowley/go-metrics"
	jsoniter "github.com/json-iterator/go"
)

// Snapshot is a point-in-time, JSON-encodable view of every counter in
// a go-metrics Registry.
type Snapshot map[string]int64

// Collector adapts a gometrics.Registry to the Item shape so it can be
// registered under a Set alongside any future non-counter metric
// sources.
type Collector struct {
	registry gometrics.Registry
}

// NewCollector wraps registry, defaulting to go-metrics' own
// process-wide DefaultRegistry when nil.
func NewCollector(registry gometrics.Registry) *Collector {
	if registry == nil {
		registry = gometrics.DefaultRegistry
	}
	return &Collector{registry: registry}
}

// Snapshot walks the registry and returns every counter's current
// value. Non-counter metric types are skipped — this module only ever
// registers counters (dispatcher.queued/rejected/dropped/committed).
func (c *Collector) Snapshot() Snapshot {
	snap := make(Snapshot)
	c.registry.Each(func(name string, v interface{}) {
		if counter, ok := v.(gometrics.Counter); ok {
			snap[name] = counter.Count()
		}
	})
	return snap
}

// JSONString implements Item, letting a Collector sit inside the same
// Set as any other labeled metric source.
func (c *Collector) JSONString() string {
	bz, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(c.Snapshot())
	if err != nil {
		return "{}"
	}
	return string(bz)
}

var _ Item = (*Collector)(nil)

// NewSet builds a Set with a single "dispatcher" label backed by
// registry, ready to be installed via rpc.SetEnvironment as the metrics
// endpoint's source (see cmd/commands/run_node.go's startRPC).
func NewSet(registry gometrics.Registry) (*Set, error) {
	set := NewMetricSet()
	if err := set.SetMetrics("dispatcher", NewCollector(registry)); err != nil {
		return nil, err
	}
	return set, nil
}
