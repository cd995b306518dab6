// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package adjuster

import (
	"github.com/samirscode/zipkin/model"
)

// TimeSkew returns an adjuster that corrects unsynchronized host
// clocks within one trace, so that a server's "sr" never appears
// to precede the matching client's "cs".
//
// For every client/server hop that recorded the full cs/sr/ss/cr
// quartet the implied skew of the server host is
//
//	skew = sr - cs - latency, latency = ((cr-cs) - (ss-sr)) / 2
//
// The hop may live inside a single span (client and server annotate
// the same span id) or across a parent/child pair where the parent
// holds cs/cr and the child holds sr/ss. The negated skew is then
// applied to every annotation recorded by that host anywhere in the
// trace. Incomplete quartets contribute no correction, and spans
// unreachable from the root (cycles, dangling parents) are simply
// left unadjusted.
func TimeSkew() Adjuster {
	return Func(func(trace *model.Trace) {
		if len(trace.Spans) == 0 {
			return
		}
		offsets := hostOffsets(trace)
		if len(offsets) == 0 {
			return
		}
		for _, span := range trace.Spans {
			for i := range span.Annotations {
				if off, ok := offsets[span.Annotations[i].Host]; ok {
					span.Annotations[i].Timestamp += off
				}
			}
		}
	})
}

// hostOffsets walks the parent forest from the root-most span and
// collects one additive correction per host. The first hop that
// implicates a host wins; later hops never overwrite it.
func hostOffsets(trace *model.Trace) map[model.Endpoint]int64 {
	offsets := map[model.Endpoint]int64{}
	spans := trace.SpanMap()
	children := trace.ChildrenMap()
	root := trace.RootMostSpan()
	if root == nil {
		return offsets
	}

	visited := map[model.SpanID]struct{}{}
	stack := []*model.Span{root}
	for len(stack) > 0 {
		span := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[span.SpanID]; ok {
			continue
		}
		visited[span.SpanID] = struct{}{}

		if host, off, ok := hopSkew(span, spans); ok {
			if _, seen := offsets[host]; !seen {
				offsets[host] = off
			}
		}
		stack = append(stack, children[span.SpanID]...)
	}
	return offsets
}

// hopSkew extracts the cs/sr/ss/cr quartet for the hop ending at span
// and returns the correction for the server host. Client annotations
// are taken from the span itself or, failing that, from its parent.
func hopSkew(span *model.Span, spans map[model.SpanID]*model.Span) (model.Endpoint, int64, bool) {
	sr, okSR := span.Annotation(model.ServerRecv)
	ss, okSS := span.Annotation(model.ServerSend)
	if !okSR || !okSS {
		return model.Endpoint{}, 0, false
	}
	cs, okCS := span.Annotation(model.ClientSend)
	cr, okCR := span.Annotation(model.ClientRecv)
	if !okCS || !okCR {
		parent, ok := spans[span.ParentID]
		if !ok {
			return model.Endpoint{}, 0, false
		}
		cs, okCS = parent.Annotation(model.ClientSend)
		cr, okCR = parent.Annotation(model.ClientRecv)
		if !okCS || !okCR {
			return model.Endpoint{}, 0, false
		}
	}
	if cs.Host == sr.Host {
		// same clock on both sides, nothing to correct
		return model.Endpoint{}, 0, false
	}
	latency := ((cr.Timestamp - cs.Timestamp) - (ss.Timestamp - sr.Timestamp)) / 2
	skew := sr.Timestamp - cs.Timestamp - latency
	if skew == 0 {
		return model.Endpoint{}, 0, false
	}
	return sr.Host, -skew, true
}
