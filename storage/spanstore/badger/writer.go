// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/samirscode/zipkin/model"
)

// maxConflictRetries bounds the WriteSpan retry loop when concurrent
// writes to one trace abort each other's transactions.
const maxConflictRetries = 16

// WriteSpan stores the span under its (trace id, span id) primary key
// and registers its dimensions in the secondary indexes. Every entry
// carries badger's native TTL for physical reclamation; logical expiry
// is enforced by the TTL manager on reads.
//
// Rewriting the identical span produces the identical key set, so the
// operation is idempotent. A differing span with the same ids
// overwrites the primary entry; superseded index entries age out with
// their TTL and lookups dedupe per trace id in the meantime.
func (s *Store) WriteSpan(_ context.Context, span *model.Span) error {
	ttl := time.Duration(s.ttl.TTL(span.TraceID)) * time.Second
	expireAt := s.timeNow().Add(ttl)

	value, err := json.Marshal(span)
	if err != nil {
		return fmt.Errorf("cannot encode span: %w", err)
	}

	entries := []*badger.Entry{
		badger.NewEntry(spanKey(span.TraceID, span.SpanID), value).
			WithTTL(ttl).WithMeta(jsonEncoding),
	}
	for _, key := range spanIndexKeys(span) {
		entries = append(entries, badger.NewEntry(key, nil).WithTTL(ttl))
	}

	// Concurrent writers to the same trace collide on the stats
	// read-modify-write and badger aborts one transaction with
	// ErrConflict. That is not a storage failure; the retry re-reads
	// the fresh stats value and folds into it.
	for attempt := 0; ; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			if err := s.mergeStats(txn, span, ttl); err != nil {
				return err
			}
			for _, e := range entries {
				if err := txn.SetEntry(e); err != nil {
					return err
				}
			}
			return nil
		})
		if err != badger.ErrConflict || attempt >= maxConflictRetries {
			break
		}
	}
	if err != nil {
		return err
	}

	// Cache refresh outside the transaction, as the write is already
	// durable by now. The name expiry is fixed to the trace's TTL at
	// write time; a later per-trace override does not move it.
	for _, svc := range span.ServiceNames() {
		s.cache.Update(svc, span.Name, expireAt.Unix())
	}
	s.ttl.RecordWrite(span.TraceID)
	return nil
}

// spanIndexKeys derives every secondary-index key the span registers:
// service name(s), span name, timestamp-annotation values and binary
// annotation key/value pairs. The representative timestamp is the
// span's earliest annotation timestamp.
func spanIndexKeys(span *model.Span) [][]byte {
	repTs := span.StartTs()
	var keys [][]byte
	for _, svc := range span.ServiceNames() {
		keys = append(keys, indexKey(serviceIndexKey, repTs, span.TraceID, svc))
		if span.Name != "" {
			keys = append(keys, indexKey(spanNameIndexKey, repTs, span.TraceID, svc, span.Name))
		}
	}
	for _, a := range span.Annotations {
		if a.Host.ServiceName == "" {
			continue
		}
		keys = append(keys, indexKey(annotationIndexKey, repTs, span.TraceID, a.Host.ServiceName, a.Value))
	}
	for _, b := range span.BinaryAnnotations {
		svc := b.Host.ServiceName
		if svc == "" {
			svc = span.ServiceName()
		}
		if svc == "" {
			continue
		}
		keys = append(keys, indexKey(binaryAnnoIndexKey, repTs, span.TraceID, svc, b.Key, string(b.Value)))
	}
	return keys
}

// mergeStats folds the span's annotation extent into the trace's
// stats entry, read-modify-write inside the caller's transaction.
func (s *Store) mergeStats(txn *badger.Txn, span *model.Span, ttl time.Duration) error {
	if len(span.Annotations) == 0 {
		return nil
	}
	minTs, maxTs := span.StartTs(), span.EndTs()
	key := statsKey(span.TraceID)
	item, err := txn.Get(key)
	if err == nil {
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		oldMin, oldMax := decodeStats(val)
		if oldMin != 0 && oldMin < minTs {
			minTs = oldMin
		}
		if oldMax > maxTs {
			maxTs = oldMax
		}
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	return txn.SetEntry(badger.NewEntry(key, encodeStats(minTs, maxTs)).WithTTL(ttl))
}

// RemoveTrace deletes the trace's spans, its stats entry and every
// index key its spans had registered.
func (s *Store) RemoveTrace(ctx context.Context, traceID model.TraceID) error {
	spans, err := s.readSpans(traceID)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, span := range spans {
			if err := txn.Delete(spanKey(traceID, span.SpanID)); err != nil {
				return err
			}
			for _, key := range spanIndexKeys(span) {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
		}
		return txn.Delete(statsKey(traceID))
	})
	if err != nil {
		return err
	}
	s.ttl.Forget(traceID)
	return nil
}
