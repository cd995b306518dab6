// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package querysvc

import (
	"github.com/prometheus/client_golang/prometheus"
)

// serviceMetrics are created unregistered so multiple service
// instances can coexist (tests); the binary registers them once via
// RegisterMetrics.
type serviceMetrics struct {
	spansWritten   prometheus.Counter
	tracesFetched  prometheus.Counter
	lookupDuration prometheus.Histogram
}

func newServiceMetrics() *serviceMetrics {
	return &serviceMetrics{
		spansWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zipkin_query",
			Name:      "spans_written_total",
			Help:      "Number of spans ingested into the span store.",
		}),
		tracesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zipkin_query",
			Name:      "traces_fetched_total",
			Help:      "Number of traces returned by batch fetches.",
		}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zipkin_query",
			Name:      "index_lookup_duration_seconds",
			Help:      "Latency of secondary-index lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *serviceMetrics) lookupTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.lookupDuration)
}

// RegisterMetrics registers the service's collectors with a registry.
func (qs *QueryService) RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(qs.metrics.spansWritten, qs.metrics.tracesFetched, qs.metrics.lookupDuration)
}
