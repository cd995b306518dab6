// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
	"github.com/samirscode/zipkin/storage/ttlstore"
)

type spanNameKey struct {
	service string
	name    string
}

type annotationKey struct {
	service string
	value   string
}

type binaryKey struct {
	service string
	key     string
	value   string
}

// entry is the per-(dimension, trace) index record. The representative
// timestamp keeps the greatest earliest-annotation timestamp of the
// spans indexed under the dimension, so "most recent N before endTs"
// pagination sees one entry per trace.
type entry struct {
	ts int64
}

type traceSet map[model.TraceID]*entry

// traceStats tracks the annotation extent of a trace; the duration an
// index lookup orders by is maxTs-minTs, updated lazily as spans arrive.
type traceStats struct {
	minTs int64
	maxTs int64
}

// indexTable maintains the secondary indexes over the span shards.
type indexTable struct {
	mu        sync.RWMutex
	byService map[string]traceSet
	bySpan    map[spanNameKey]traceSet
	byAnno    map[annotationKey]traceSet
	byBinary  map[binaryKey]traceSet
	stats     map[model.TraceID]*traceStats
}

func newIndexTable() *indexTable {
	return &indexTable{
		byService: map[string]traceSet{},
		bySpan:    map[spanNameKey]traceSet{},
		byAnno:    map[annotationKey]traceSet{},
		byBinary:  map[binaryKey]traceSet{},
		stats:     map[model.TraceID]*traceStats{},
	}
}

// indexSpan registers the span's services, span name and annotations
// against its trace id.
func (t *indexTable) indexSpan(span *model.Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexSpanLocked(span)
}

func (t *indexTable) indexSpanLocked(span *model.Span) {
	repTs := span.StartTs()
	for _, svc := range span.ServiceNames() {
		upsert(t.byService, svc, span.TraceID, repTs)
		if span.Name != "" {
			upsert(t.bySpan, spanNameKey{svc, span.Name}, span.TraceID, repTs)
		}
	}
	for _, a := range span.Annotations {
		if a.Host.ServiceName == "" {
			continue
		}
		upsert(t.byAnno, annotationKey{a.Host.ServiceName, a.Value}, span.TraceID, repTs)
	}
	for _, b := range span.BinaryAnnotations {
		svc := b.Host.ServiceName
		if svc == "" {
			svc = span.ServiceName()
		}
		if svc == "" {
			continue
		}
		upsert(t.byBinary, binaryKey{svc, b.Key, string(b.Value)}, span.TraceID, repTs)
	}

	st, ok := t.stats[span.TraceID]
	if !ok {
		st = &traceStats{}
		t.stats[span.TraceID] = st
	}
	for _, a := range span.Annotations {
		if st.minTs == 0 || a.Timestamp < st.minTs {
			st.minTs = a.Timestamp
		}
		if a.Timestamp > st.maxTs {
			st.maxTs = a.Timestamp
		}
	}
}

func upsert[K comparable](m map[K]traceSet, key K, traceID model.TraceID, ts int64) {
	set, ok := m[key]
	if !ok {
		set = traceSet{}
		m[key] = set
	}
	e, ok := set[traceID]
	if !ok {
		set[traceID] = &entry{ts: ts}
		return
	}
	if ts > e.ts {
		e.ts = ts
	}
}

// reindexTrace rebuilds every entry of one trace, used when a span
// replacement may have invalidated previously indexed dimensions.
func (t *indexTable) reindexTrace(traceID model.TraceID, spans []*model.Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeTraceLocked(traceID)
	for _, span := range spans {
		t.indexSpanLocked(span)
	}
}

func (t *indexTable) removeTrace(traceID model.TraceID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeTraceLocked(traceID)
}

func (t *indexTable) removeTraceLocked(traceID model.TraceID) {
	prune(t.byService, traceID)
	prune(t.bySpan, traceID)
	prune(t.byAnno, traceID)
	prune(t.byBinary, traceID)
	delete(t.stats, traceID)
}

func prune[K comparable](m map[K]traceSet, traceID model.TraceID) {
	for key, set := range m {
		delete(set, traceID)
		if len(set) == 0 {
			delete(m, key)
		}
	}
}

// lookup gathers the unordered, unbounded candidates for a query:
// non-expired traces under the selected dimension with representative
// timestamp strictly below EndTs.
func (t *indexTable) lookup(query *spanstore.IndexQuery, ttl *ttlstore.Manager, now time.Time) []spanstore.IndexEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var set traceSet
	switch {
	case query.AnnotationKey != "" && query.AnnotationValue != nil:
		set = t.byBinary[binaryKey{query.ServiceName, query.AnnotationKey, string(query.AnnotationValue)}]
	case query.AnnotationKey != "":
		set = t.byAnno[annotationKey{query.ServiceName, query.AnnotationKey}]
	case query.SpanName != "":
		set = t.bySpan[spanNameKey{query.ServiceName, query.SpanName}]
	default:
		set = t.byService[query.ServiceName]
	}

	entries := make([]spanstore.IndexEntry, 0, len(set))
	for id, e := range set {
		if query.EndTs > 0 && e.ts >= query.EndTs {
			continue
		}
		if ttl.IsExpired(id, now) {
			continue
		}
		var duration int64
		if st, ok := t.stats[id]; ok {
			duration = st.maxTs - st.minTs
		}
		entries = append(entries, spanstore.IndexEntry{TraceID: id, Ts: e.ts, Duration: duration})
	}
	return entries
}

// services lists service names that still map to a non-expired trace.
func (t *indexTable) services(ttl *ttlstore.Manager, now time.Time) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var names []string
	for svc, set := range t.byService {
		if anyLive(set, ttl, now) {
			names = append(names, svc)
		}
	}
	sort.Strings(names)
	return names
}

// spanNames lists span names of one service over non-expired traces.
func (t *indexTable) spanNames(service string, ttl *ttlstore.Manager, now time.Time) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var names []string
	for key, set := range t.bySpan {
		if key.service != service {
			continue
		}
		if anyLive(set, ttl, now) {
			names = append(names, key.name)
		}
	}
	sort.Strings(names)
	return names
}

func anyLive(set traceSet, ttl *ttlstore.Manager, now time.Time) bool {
	for id := range set {
		if !ttl.IsExpired(id, now) {
			return true
		}
	}
	return false
}
