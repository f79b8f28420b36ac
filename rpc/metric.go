package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// ResultMetrics is the JSON-RPC response shape for the metrics
// endpoint: one JSON-encoded blob per registered metric label.
type ResultMetrics struct {
	Metrics map[string]string `json:"metrics"`
}

// JSONMetrics returns every registered metric's JSON snapshot, or just
// one label's if label is non-empty.
func JSONMetrics(ctx *rpctypes.Context, label string) (*ResultMetrics, error) {
	result := &ResultMetrics{Metrics: make(map[string]string)}

	labels := []string{label}
	if label == "" {
		labels = env.MetricSet.GetAlllabels()
	}

	for _, l := range labels {
		if item := env.MetricSet.GetMetrics(l); item != nil {
			result.Metrics[l] = item.JSONString()
		}
	}

	return result, nil
}
