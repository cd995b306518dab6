// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

// Span is one unit of work within a trace. Spans form a forest via
// ParentID references; the references are weak lookups by id, so a
// parent may be missing from the trace and cycles must be tolerated.
type Span struct {
	TraceID           TraceID            `json:"traceId"`
	SpanID            SpanID             `json:"id"`
	Name              string             `json:"name"`
	ParentID          SpanID             `json:"parentId,omitempty"` // 0 means no parent
	Annotations       []Annotation       `json:"annotations"`
	BinaryAnnotations []BinaryAnnotation `json:"binaryAnnotations"`
}

// ServiceName returns the service of the span's first annotation host,
// falling back to the first binary annotation host.
func (s *Span) ServiceName() string {
	if len(s.Annotations) > 0 {
		return s.Annotations[0].Host.ServiceName
	}
	if len(s.BinaryAnnotations) > 0 {
		return s.BinaryAnnotations[0].Host.ServiceName
	}
	return ""
}

// ServiceNames returns the distinct service names of all annotation
// hosts, in first-seen order.
func (s *Span) ServiceNames() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, a := range s.Annotations {
		if a.Host.ServiceName == "" {
			continue
		}
		if _, ok := seen[a.Host.ServiceName]; ok {
			continue
		}
		seen[a.Host.ServiceName] = struct{}{}
		names = append(names, a.Host.ServiceName)
	}
	for _, b := range s.BinaryAnnotations {
		if b.Host.ServiceName == "" {
			continue
		}
		if _, ok := seen[b.Host.ServiceName]; ok {
			continue
		}
		seen[b.Host.ServiceName] = struct{}{}
		names = append(names, b.Host.ServiceName)
	}
	return names
}

// StartTs returns the earliest annotation timestamp, or 0 if the span
// has no annotations.
func (s *Span) StartTs() int64 {
	var minTs int64
	for _, a := range s.Annotations {
		if minTs == 0 || a.Timestamp < minTs {
			minTs = a.Timestamp
		}
	}
	return minTs
}

// EndTs returns the latest annotation timestamp, or 0 if the span has
// no annotations.
func (s *Span) EndTs() int64 {
	var maxTs int64
	for _, a := range s.Annotations {
		if a.Timestamp > maxTs {
			maxTs = a.Timestamp
		}
	}
	return maxTs
}

// Duration returns EndTs-StartTs in microseconds.
func (s *Span) Duration() int64 {
	if len(s.Annotations) == 0 {
		return 0
	}
	return s.EndTs() - s.StartTs()
}

// Annotation returns the first annotation with the given value.
func (s *Span) Annotation(value string) (Annotation, bool) {
	for _, a := range s.Annotations {
		if a.Value == value {
			return a, true
		}
	}
	return Annotation{}, false
}

// Clone returns a deep copy of the span. Annotation slices are copied
// so callers may adjust timestamps without touching the original.
func (s *Span) Clone() *Span {
	c := *s
	c.Annotations = make([]Annotation, len(s.Annotations))
	copy(c.Annotations, s.Annotations)
	c.BinaryAnnotations = make([]BinaryAnnotation, len(s.BinaryAnnotations))
	for i, b := range s.BinaryAnnotations {
		nb := b
		nb.Value = append([]byte(nil), b.Value...)
		c.BinaryAnnotations[i] = nb
	}
	return &c
}
