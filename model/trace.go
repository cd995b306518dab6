// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

// Trace is the complete set of spans sharing a trace id.
type Trace struct {
	Spans []*Span `json:"spans"`
}

// TraceID returns the id shared by the trace's spans, or 0 for an
// empty trace.
func (t *Trace) TraceID() TraceID {
	if len(t.Spans) == 0 {
		return 0
	}
	return t.Spans[0].TraceID
}

// SpanMap indexes the trace's spans by span id. When several spans
// carry the same id the first one wins.
func (t *Trace) SpanMap() map[SpanID]*Span {
	m := make(map[SpanID]*Span, len(t.Spans))
	for _, s := range t.Spans {
		if _, ok := m[s.SpanID]; !ok {
			m[s.SpanID] = s
		}
	}
	return m
}

// RootMostSpan resolves the span closest to the root of the parent
// forest: a span with no parent, or whose parent is absent from the
// trace. If several qualify the earliest-starting one wins. When every
// span has a resolvable parent (a cycle), the earliest-starting span
// of the whole trace is returned so that callers always make progress.
func (t *Trace) RootMostSpan() *Span {
	if len(t.Spans) == 0 {
		return nil
	}
	spans := t.SpanMap()
	var root *Span
	for _, s := range t.Spans {
		if s.ParentID != 0 {
			if _, ok := spans[s.ParentID]; ok {
				continue
			}
		}
		if root == nil || earlierSpan(s, root) {
			root = s
		}
	}
	if root != nil {
		return root
	}
	for _, s := range t.Spans {
		if root == nil || earlierSpan(s, root) {
			root = s
		}
	}
	return root
}

func earlierSpan(a, b *Span) bool {
	at, bt := a.StartTs(), b.StartTs()
	if at != bt {
		return at < bt
	}
	return a.SpanID < b.SpanID
}

// Depths computes the distance of every span from the root of the
// parent forest. Roots have depth 0. A span revisited on its own
// parent chain is treated as its own root, which bounds the walk in
// the presence of cycles.
func (t *Trace) Depths() map[SpanID]int {
	spans := t.SpanMap()
	depths := make(map[SpanID]int, len(t.Spans))
	for _, s := range t.Spans {
		if _, done := depths[s.SpanID]; done {
			continue
		}
		computeDepth(s, spans, depths, map[SpanID]struct{}{})
	}
	return depths
}

func computeDepth(s *Span, spans map[SpanID]*Span, depths map[SpanID]int, walking map[SpanID]struct{}) int {
	if d, ok := depths[s.SpanID]; ok {
		return d
	}
	if _, onWalk := walking[s.SpanID]; onWalk {
		depths[s.SpanID] = 0
		return 0
	}
	parent, ok := spans[s.ParentID]
	if s.ParentID == 0 || !ok {
		depths[s.SpanID] = 0
		return 0
	}
	walking[s.SpanID] = struct{}{}
	d := 1 + computeDepth(parent, spans, depths, walking)
	delete(walking, s.SpanID)
	depths[s.SpanID] = d
	return d
}

// ChildrenMap groups span ids by their resolvable parent span.
func (t *Trace) ChildrenMap() map[SpanID][]*Span {
	spans := t.SpanMap()
	children := make(map[SpanID][]*Span)
	for _, s := range t.Spans {
		if s.ParentID == 0 {
			continue
		}
		if _, ok := spans[s.ParentID]; !ok {
			continue
		}
		children[s.ParentID] = append(children[s.ParentID], s)
	}
	return children
}

// Clone returns a deep copy of the trace.
func (t *Trace) Clone() *Trace {
	c := &Trace{Spans: make([]*Span, len(t.Spans))}
	for i, s := range t.Spans {
		c.Spans[i] = s.Clone()
	}
	return c
}
