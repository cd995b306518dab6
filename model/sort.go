// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import "sort"

// SortTrace orders the trace's spans by start timestamp, span id
// breaking ties, and each span's annotations by timestamp.
func SortTrace(t *Trace) {
	sort.SliceStable(t.Spans, func(i, j int) bool {
		return earlierSpan(t.Spans[i], t.Spans[j])
	})
	for _, s := range t.Spans {
		SortAnnotations(s.Annotations)
	}
}

// SortAnnotations orders annotations by timestamp, preserving the
// original sequence of equal timestamps.
func SortAnnotations(annotations []Annotation) {
	sort.SliceStable(annotations, func(i, j int) bool {
		return annotations[i].Timestamp < annotations[j].Timestamp
	})
}

// SortTraceIDs sorts a list of trace ids ascending.
func SortTraceIDs(ids []TraceID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
