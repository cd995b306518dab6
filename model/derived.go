// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import "sort"

// The shapes in this file are derived views over a Trace. They are
// computed on demand and never stored, so they cannot go stale
// relative to the span set they were built from.

// TraceSummary condenses a trace to its extent and participants.
type TraceSummary struct {
	TraceID        TraceID        `json:"traceId"`
	StartTs        int64          `json:"startTimestamp"`
	EndTs          int64          `json:"endTimestamp"`
	DurationMicros int64          `json:"durationMicro"`
	ServiceCounts  map[string]int `json:"serviceCounts"`
	Endpoints      []Endpoint     `json:"endpoints"`
}

// TimelineAnnotation is an annotation flattened for chronological
// display, enriched with the identity of the span that recorded it.
type TimelineAnnotation struct {
	Timestamp   int64    `json:"timestamp"`
	Value       string   `json:"value"`
	Host        Endpoint `json:"host"`
	SpanID      SpanID   `json:"spanId"`
	ParentID    SpanID   `json:"parentId,omitempty"`
	ServiceName string   `json:"serviceName"`
	SpanName    string   `json:"spanName"`
}

// TraceTimeline is the chronological rendering of a trace.
type TraceTimeline struct {
	TraceID           TraceID              `json:"traceId"`
	RootSpanID        SpanID               `json:"rootMostSpanId"`
	Annotations       []TimelineAnnotation `json:"annotations"`
	BinaryAnnotations []BinaryAnnotation   `json:"binaryAnnotations"`
}

// TraceCombo bundles a trace with its derived shapes. Summary,
// Timeline and SpanDepths are nil when the trace has no spans.
type TraceCombo struct {
	Trace      *Trace         `json:"trace"`
	Summary    *TraceSummary  `json:"summary,omitempty"`
	Timeline   *TraceTimeline `json:"timeline,omitempty"`
	SpanDepths map[SpanID]int `json:"spanDepths,omitempty"`
}

// Summarize computes the TraceSummary of a trace. The second return
// value is false when the trace has no spans with annotations.
func Summarize(t *Trace) (TraceSummary, bool) {
	summary := TraceSummary{
		TraceID:       t.TraceID(),
		ServiceCounts: map[string]int{},
	}
	seenEndpoints := map[Endpoint]struct{}{}
	any := false
	for _, s := range t.Spans {
		for _, a := range s.Annotations {
			any = true
			if summary.StartTs == 0 || a.Timestamp < summary.StartTs {
				summary.StartTs = a.Timestamp
			}
			if a.Timestamp > summary.EndTs {
				summary.EndTs = a.Timestamp
			}
			if _, ok := seenEndpoints[a.Host]; !ok {
				seenEndpoints[a.Host] = struct{}{}
				summary.Endpoints = append(summary.Endpoints, a.Host)
			}
		}
		if len(s.Annotations) > 0 {
			if svc := s.Annotations[0].Host.ServiceName; svc != "" {
				summary.ServiceCounts[svc]++
			}
		}
	}
	if !any {
		return TraceSummary{}, false
	}
	summary.DurationMicros = summary.EndTs - summary.StartTs
	return summary, true
}

// TimelineOf flattens every annotation of the trace into
// TimelineAnnotations ordered by timestamp, span id breaking ties and
// original sequence breaking the rest. Binary annotations are carried
// over unmodified.
func TimelineOf(t *Trace) (TraceTimeline, bool) {
	if len(t.Spans) == 0 {
		return TraceTimeline{}, false
	}
	timeline := TraceTimeline{TraceID: t.TraceID()}
	if root := t.RootMostSpan(); root != nil {
		timeline.RootSpanID = root.SpanID
	}
	for _, s := range t.Spans {
		for _, a := range s.Annotations {
			timeline.Annotations = append(timeline.Annotations, TimelineAnnotation{
				Timestamp:   a.Timestamp,
				Value:       a.Value,
				Host:        a.Host,
				SpanID:      s.SpanID,
				ParentID:    s.ParentID,
				ServiceName: a.Host.ServiceName,
				SpanName:    s.Name,
			})
		}
		timeline.BinaryAnnotations = append(timeline.BinaryAnnotations, s.BinaryAnnotations...)
	}
	sort.SliceStable(timeline.Annotations, func(i, j int) bool {
		a, b := timeline.Annotations[i], timeline.Annotations[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.SpanID < b.SpanID
	})
	return timeline, true
}

// ComboOf builds the TraceCombo of a trace. Derived fields are left
// nil for a trace with no spans.
func ComboOf(t *Trace) TraceCombo {
	combo := TraceCombo{Trace: t}
	if len(t.Spans) == 0 {
		return combo
	}
	if summary, ok := Summarize(t); ok {
		combo.Summary = &summary
	}
	if timeline, ok := TimelineOf(t); ok {
		combo.Timeline = &timeline
	}
	combo.SpanDepths = t.Depths()
	return combo
}
