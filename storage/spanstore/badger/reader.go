// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package badger

import (
	"bytes"
	"context"
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
)

// GetTrace returns the trace's spans decoded from the primary keys,
// or nil when the trace is unknown or expired.
func (s *Store) GetTrace(_ context.Context, traceID model.TraceID) (*model.Trace, error) {
	if s.ttl.IsExpired(traceID, s.timeNow()) {
		return nil, nil
	}
	spans, err := s.readSpans(traceID)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, nil
	}
	trace := &model.Trace{Spans: spans}
	model.SortTrace(trace)
	return trace, nil
}

// GetTraces resolves many trace ids, omitting ids with no visible data
// and preserving the input order of the rest.
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

func (s *Store) readSpans(traceID model.TraceID) ([]*model.Span, error) {
	prefix := traceKeyPrefix(traceID)
	var spans []*model.Span
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 16
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			span := &model.Span{}
			if err := json.Unmarshal(val, span); err != nil {
				return err
			}
			spans = append(spans, span)
		}
		return nil
	})
	return spans, err
}

// FindTraceIDs scans the secondary index selected by the query,
// dedupes matches per trace id keeping the greatest representative
// timestamp, and orders the survivors.
func (s *Store) FindTraceIDs(_ context.Context, query *spanstore.IndexQuery) ([]model.TraceID, error) {
	if query == nil || query.ServiceName == "" {
		return nil, spanstore.ErrInvalidArgument
	}
	limit := query.Limit
	if limit <= 0 {
		limit = spanstore.DefaultQueryLimit
	}

	var prefix []byte
	switch {
	case query.AnnotationKey != "" && query.AnnotationValue != nil:
		prefix = indexSeekPrefix(binaryAnnoIndexKey, query.ServiceName, query.AnnotationKey, string(query.AnnotationValue))
	case query.AnnotationKey != "":
		prefix = indexSeekPrefix(annotationIndexKey, query.ServiceName, query.AnnotationKey)
	case query.SpanName != "":
		prefix = indexSeekPrefix(spanNameIndexKey, query.ServiceName, query.SpanName)
	default:
		prefix = indexSeekPrefix(serviceIndexKey, query.ServiceName)
	}

	now := s.timeNow()
	best := map[model.TraceID]int64{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // key-only scan
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ts, traceID, ok := parseIndexKeySuffix(key)
			if !ok || !bytes.Equal(key[:len(key)-indexKeySuffixLength], prefix) {
				continue
			}
			if s.ttl.IsExpired(traceID, now) {
				continue
			}
			if old, ok := best[traceID]; !ok || ts > old {
				best[traceID] = ts
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The EndTs window applies to the trace's single representative
	// timestamp, after folding. Filtering raw keys instead would let a
	// trace already returned on an earlier page reappear through an
	// older key of the same dimension.
	entries := make([]spanstore.IndexEntry, 0, len(best))
	for traceID, ts := range best {
		if query.EndTs > 0 && ts >= query.EndTs {
			continue
		}
		entries = append(entries, spanstore.IndexEntry{TraceID: traceID, Ts: ts})
	}
	if query.Order == spanstore.OrderDurationAsc || query.Order == spanstore.OrderDurationDesc {
		if err := s.fillDurations(entries); err != nil {
			return nil, err
		}
	}
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

// fillDurations resolves each candidate's duration from its trace
// stats entry. A trace with no stats sorts with duration 0.
func (s *Store) fillDurations(entries []spanstore.IndexEntry) error {
	return s.db.View(func(txn *badger.Txn) error {
		for i := range entries {
			item, err := txn.Get(statsKey(entries[i].TraceID))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			minTs, maxTs := decodeStats(val)
			entries[i].Duration = maxTs - minTs
		}
		return nil
	})
}

// GetServices lists service names seen within the retention window.
func (s *Store) GetServices(context.Context) ([]string, error) {
	return s.cache.GetServices(), nil
}

// GetSpanNames lists span names of one service within the retention
// window.
func (s *Store) GetSpanNames(_ context.Context, service string) ([]string, error) {
	return s.cache.GetSpanNames(service), nil
}
