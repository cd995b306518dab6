// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

// Package memory is the default span store: spans live in sharded maps
// keyed by trace id, with secondary indexes maintained synchronously on
// every write. Expired traces are filtered on read; PurgeExpired offers
// physical reclamation for an optional background sweep.
package memory

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
	"github.com/samirscode/zipkin/storage/ttlstore"
)

const numShards = 16

// Store is an in-memory implementation of spanstore.Store. Span data
// is sharded by trace id so unrelated traces never contend on one
// lock; the index table carries its own lock.
type Store struct {
	shards [numShards]shard
	idx    *indexTable
	ttl    *ttlstore.Manager
	logger *zap.Logger

	timeNow func() time.Time
}

// NewStore creates an empty in-memory store backed by the given TTL
// manager.
func NewStore(ttl *ttlstore.Manager, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		idx:     newIndexTable(),
		ttl:     ttl,
		logger:  logger,
		timeNow: time.Now,
	}
	for i := range s.shards {
		s.shards[i].traces = map[model.TraceID]*traceRecord{}
	}
	return s
}

func (s *Store) shard(traceID model.TraceID) *shard {
	return &s.shards[uint64(traceID)%numShards]
}

// WriteSpan appends a span to its trace. Identical resubmission is a
// no-op; a differing span with the same ids replaces the old one and
// the trace is reindexed from scratch.
func (s *Store) WriteSpan(_ context.Context, span *model.Span) error {
	sh := s.shard(span.TraceID)

	sh.Lock()
	rec, ok := sh.traces[span.TraceID]
	if !ok {
		rec = &traceRecord{spans: map[model.SpanID]*model.Span{}}
		sh.traces[span.TraceID] = rec
	}
	old, replacing := rec.spans[span.SpanID]
	if replacing && reflect.DeepEqual(old, span) {
		sh.Unlock()
		s.ttl.RecordWrite(span.TraceID)
		return nil
	}
	stored := span.Clone()
	if !replacing {
		rec.order = append(rec.order, span.SpanID)
	}
	rec.spans[span.SpanID] = stored
	// Index while still holding the shard lock. Reindexing from a
	// snapshot taken before the unlock could overwrite entries a
	// concurrent writer of the same trace has already published.
	if replacing {
		s.idx.reindexTrace(span.TraceID, rec.snapshot())
	} else {
		s.idx.indexSpan(stored)
	}
	sh.Unlock()

	s.ttl.RecordWrite(span.TraceID)
	return nil
}

// GetTrace returns a copy of the trace's spans ordered by start
// timestamp, or nil if the trace is unknown or expired.
func (s *Store) GetTrace(_ context.Context, traceID model.TraceID) (*model.Trace, error) {
	if s.ttl.IsExpired(traceID, s.timeNow()) {
		return nil, nil
	}
	sh := s.shard(traceID)
	sh.RLock()
	rec, ok := sh.traces[traceID]
	var spans []*model.Span
	if ok {
		spans = rec.snapshot()
	}
	sh.RUnlock()
	if len(spans) == 0 {
		return nil, nil
	}

	trace := &model.Trace{Spans: spans}
	model.SortTrace(trace)
	return trace, nil
}

// GetTraces resolves many trace ids, omitting ids with no visible
// data and preserving the input order of the rest.
func (s *Store) GetTraces(ctx context.Context, traceIDs []model.TraceID) ([]*model.Trace, error) {
	traces := make([]*model.Trace, 0, len(traceIDs))
	for _, id := range traceIDs {
		trace, err := s.GetTrace(ctx, id)
		if err != nil {
			return nil, err
		}
		if trace != nil {
			traces = append(traces, trace)
		}
	}
	return traces, nil
}

// RemoveTrace deletes the trace's spans and every index entry that
// referenced it.
func (s *Store) RemoveTrace(_ context.Context, traceID model.TraceID) error {
	sh := s.shard(traceID)
	sh.Lock()
	delete(sh.traces, traceID)
	s.idx.removeTrace(traceID)
	sh.Unlock()

	s.ttl.Forget(traceID)
	return nil
}

// FindTraceIDs runs a secondary-index lookup; see spanstore.IndexQuery.
func (s *Store) FindTraceIDs(_ context.Context, query *spanstore.IndexQuery) ([]model.TraceID, error) {
	if query == nil || query.ServiceName == "" {
		return nil, spanstore.ErrInvalidArgument
	}
	limit := query.Limit
	if limit <= 0 {
		limit = spanstore.DefaultQueryLimit
	}
	entries := s.idx.lookup(query, s.ttl, s.timeNow())
	spanstore.SortEntries(entries, query.Order)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	ids := make([]model.TraceID, len(entries))
	for i, e := range entries {
		ids[i] = e.TraceID
	}
	return ids, nil
}

// GetServices lists services that still have non-expired traces.
func (s *Store) GetServices(context.Context) ([]string, error) {
	return s.idx.services(s.ttl, s.timeNow()), nil
}

// GetSpanNames lists span names recorded for a service, scoped to
// non-expired traces.
func (s *Store) GetSpanNames(_ context.Context, service string) ([]string, error) {
	return s.idx.spanNames(service, s.ttl, s.timeNow()), nil
}

// PurgeExpired physically removes every trace whose retention elapsed.
// Expiry is already enforced on reads, so running this is optional.
func (s *Store) PurgeExpired(ctx context.Context) int {
	ids := s.ttl.ExpiredBefore(s.timeNow())
	for _, id := range ids {
		if err := s.RemoveTrace(ctx, id); err != nil {
			s.logger.Warn("failed to reclaim expired trace",
				zap.Stringer("trace_id", id), zap.Error(err))
		}
	}
	if len(ids) > 0 {
		s.logger.Debug("reclaimed expired traces", zap.Int("count", len(ids)))
	}
	return len(ids)
}
