// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package spanstore

import (
	"context"

	"github.com/samirscode/zipkin/model"
)

// DefaultQueryLimit caps an index lookup that did not specify a limit.
const DefaultQueryLimit = 100

// IndexQuery selects trace ids along one dimension, bounded above by
// EndTs (exclusive, microseconds) and capped at Limit entries. The
// dimension is chosen by which fields are set:
//
//   - ServiceName only            -> service-name index
//   - ServiceName + SpanName      -> span-name index
//   - ServiceName + AnnotationKey -> annotation index; a nil
//     AnnotationValue matches a timestamp annotation whose value
//     equals the key, a non-nil one matches a binary annotation with
//     that exact key and value.
type IndexQuery struct {
	ServiceName     string
	SpanName        string
	AnnotationKey   string
	AnnotationValue []byte
	EndTs           int64
	Limit           int
	Order           Order
}

// Writer ingests completed spans.
type Writer interface {
	// WriteSpan appends a span to its trace and updates the secondary
	// indexes. Writing the identical span twice leaves the store and
	// every index unchanged; a differing span with the same
	// (trace id, span id) replaces the previous one.
	WriteSpan(ctx context.Context, span *model.Span) error

	// RemoveTrace deletes all spans and index entries of a trace.
	RemoveTrace(ctx context.Context, traceID model.TraceID) error
}

// Reader answers trace fetches and index lookups. Expired traces are
// invisible to every method, even if not yet physically reclaimed.
type Reader interface {
	// GetTrace returns the trace's spans as fresh copies, or nil if
	// the trace is unknown or expired.
	GetTrace(ctx context.Context, traceID model.TraceID) (*model.Trace, error)

	// GetTraces resolves many ids, omitting unknown and expired ones
	// while preserving the relative order of the remainder.
	GetTraces(ctx context.Context, traceIDs []model.TraceID) ([]*model.Trace, error)

	// FindTraceIDs runs an index lookup and returns matching trace
	// ids in the requested order.
	FindTraceIDs(ctx context.Context, query *IndexQuery) ([]model.TraceID, error)

	// GetServices lists services with non-expired data.
	GetServices(ctx context.Context) ([]string, error)

	// GetSpanNames lists span names recorded for a service.
	GetSpanNames(ctx context.Context, service string) ([]string, error)
}

// Store combines the reader and writer halves of a span store.
type Store interface {
	Reader
	Writer
}
