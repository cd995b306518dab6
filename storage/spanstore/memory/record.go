// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"sync"

	"github.com/samirscode/zipkin/model"
)

// shard holds the traces whose ids hash to it. A reader of one trace
// sees either the pre- or post-write span set, never a partial one.
type shard struct {
	sync.RWMutex
	traces map[model.TraceID]*traceRecord
}

// traceRecord is the span set of one trace. Stored spans are never
// mutated in place; replacement swaps the pointer.
type traceRecord struct {
	spans map[model.SpanID]*model.Span
	order []model.SpanID
}

// snapshot returns deep copies of the record's spans in insertion
// order, safe to hand out and adjust outside the shard lock.
func (r *traceRecord) snapshot() []*model.Span {
	spans := make([]*model.Span, 0, len(r.order))
	for _, id := range r.order {
		if sp, ok := r.spans[id]; ok {
			spans = append(spans, sp.Clone())
		}
	}
	return spans
}
