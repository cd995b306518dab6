// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirscode/zipkin/model"
)

func annotated(spanID, parentID model.SpanID, startTs int64) *model.Span {
	host := model.NewEndpoint("svc", "10.0.0.1", 80)
	return &model.Span{
		TraceID:  1,
		SpanID:   spanID,
		ParentID: parentID,
		Name:     "op",
		Annotations: []model.Annotation{
			{Timestamp: startTs, Value: model.ServerRecv, Host: host},
		},
	}
}

func TestRootMostSpan(t *testing.T) {
	trace := &model.Trace{Spans: []*model.Span{
		annotated(2, 1, 200),
		annotated(1, 0, 100),
		annotated(3, 2, 300),
	}}
	root := trace.RootMostSpan()
	require.NotNil(t, root)
	assert.EqualValues(t, 1, root.SpanID)
}

func TestRootMostSpanPrefersUnresolvableParent(t *testing.T) {
	// the upstream part of the trace was never reported, so span 5's
	// parent 4 resolves to nothing and 5 is the root-most span
	trace := &model.Trace{Spans: []*model.Span{
		annotated(6, 5, 200),
		annotated(5, 4, 100),
	}}
	root := trace.RootMostSpan()
	require.NotNil(t, root)
	assert.EqualValues(t, 5, root.SpanID)
}

func TestRootMostSpanAllParentedFallsBackToEarliest(t *testing.T) {
	// parent cycle, no span qualifies, earliest span wins
	trace := &model.Trace{Spans: []*model.Span{
		annotated(1, 2, 300),
		annotated(2, 1, 100),
	}}
	root := trace.RootMostSpan()
	require.NotNil(t, root)
	assert.EqualValues(t, 2, root.SpanID)
}

func TestDepths(t *testing.T) {
	trace := &model.Trace{Spans: []*model.Span{
		annotated(1, 0, 100),
		annotated(2, 1, 200),
		annotated(3, 2, 300),
		annotated(4, 1, 250),
	}}
	depths := trace.Depths()
	assert.Equal(t, map[model.SpanID]int{1: 0, 2: 1, 3: 2, 4: 1}, depths)
}

func TestDepthsWithCycle(t *testing.T) {
	trace := &model.Trace{Spans: []*model.Span{
		annotated(1, 2, 100),
		annotated(2, 1, 200),
	}}
	depths := trace.Depths()
	// each cycle participant is treated as its own root when the walk
	// comes back around
	assert.Len(t, depths, 2)
	for id, d := range depths {
		assert.GreaterOrEqual(t, d, 0, "span %v", id)
	}
}

func TestSpanMapFirstWins(t *testing.T) {
	first := annotated(1, 0, 100)
	dup := annotated(1, 0, 999)
	trace := &model.Trace{Spans: []*model.Span{first, dup}}
	m := trace.SpanMap()
	require.Len(t, m, 1)
	assert.Same(t, first, m[1])
}

func TestChildrenMap(t *testing.T) {
	trace := &model.Trace{Spans: []*model.Span{
		annotated(1, 0, 100),
		annotated(2, 1, 200),
		annotated(3, 1, 300),
	}}
	children := trace.ChildrenMap()
	require.Len(t, children[1], 2)
	assert.Empty(t, children[2])
}

func TestSortTrace(t *testing.T) {
	trace := &model.Trace{Spans: []*model.Span{
		annotated(3, 1, 300),
		annotated(2, 1, 200),
	}}
	trace.Spans[0].Annotations = append(trace.Spans[0].Annotations,
		model.Annotation{Timestamp: 250, Value: model.ServerSend})
	model.SortTrace(trace)

	assert.EqualValues(t, 2, trace.Spans[0].SpanID)
	assert.EqualValues(t, 250, trace.Spans[1].Annotations[0].Timestamp)
}

func TestTraceClone(t *testing.T) {
	trace := &model.Trace{Spans: []*model.Span{annotated(1, 0, 100)}}
	clone := trace.Clone()
	require.Equal(t, trace, clone)
	clone.Spans[0].Name = "changed"
	assert.Equal(t, "op", trace.Spans[0].Name)
}
