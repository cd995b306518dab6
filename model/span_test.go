// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirscode/zipkin/model"
)

func TestServiceName(t *testing.T) {
	web := model.NewEndpoint("web", "10.0.0.1", 80)
	span := &model.Span{
		TraceID: 1,
		SpanID:  2,
		Name:    "get",
		Annotations: []model.Annotation{
			{Timestamp: 100, Value: model.ClientSend, Host: web},
		},
	}
	assert.Equal(t, "web", span.ServiceName())
}

func TestServiceNameFallsBackToBinaryAnnotations(t *testing.T) {
	db := model.NewEndpoint("db", "10.0.0.2", 5432)
	span := &model.Span{
		TraceID: 1,
		SpanID:  2,
		BinaryAnnotations: []model.BinaryAnnotation{
			model.StringAnnotation("sql.query", "select 1", db),
		},
	}
	assert.Equal(t, "db", span.ServiceName())
	assert.Empty(t, (&model.Span{}).ServiceName())
}

func TestServiceNames(t *testing.T) {
	web := model.NewEndpoint("web", "10.0.0.1", 80)
	db := model.NewEndpoint("db", "10.0.0.2", 5432)
	span := &model.Span{
		Annotations: []model.Annotation{
			{Timestamp: 100, Value: model.ClientSend, Host: web},
			{Timestamp: 150, Value: model.ServerRecv, Host: db},
			{Timestamp: 180, Value: model.ServerSend, Host: db},
		},
	}
	assert.Equal(t, []string{"web", "db"}, span.ServiceNames())
}

func TestSpanTimestamps(t *testing.T) {
	web := model.NewEndpoint("web", "10.0.0.1", 80)
	span := &model.Span{
		Annotations: []model.Annotation{
			{Timestamp: 300, Value: model.ClientRecv, Host: web},
			{Timestamp: 100, Value: model.ClientSend, Host: web},
		},
	}
	assert.EqualValues(t, 100, span.StartTs())
	assert.EqualValues(t, 300, span.EndTs())
	assert.EqualValues(t, 200, span.Duration())

	empty := &model.Span{}
	assert.Zero(t, empty.StartTs())
	assert.Zero(t, empty.Duration())
}

func TestSpanAnnotationLookup(t *testing.T) {
	web := model.NewEndpoint("web", "10.0.0.1", 80)
	span := &model.Span{
		Annotations: []model.Annotation{
			{Timestamp: 100, Value: model.ClientSend, Host: web},
		},
	}
	a, ok := span.Annotation(model.ClientSend)
	require.True(t, ok)
	assert.EqualValues(t, 100, a.Timestamp)

	_, ok = span.Annotation(model.ServerRecv)
	assert.False(t, ok)
}

func TestSpanClone(t *testing.T) {
	web := model.NewEndpoint("web", "10.0.0.1", 80)
	span := &model.Span{
		TraceID: 1,
		SpanID:  2,
		Name:    "get",
		Annotations: []model.Annotation{
			{Timestamp: 100, Value: model.ClientSend, Host: web},
		},
		BinaryAnnotations: []model.BinaryAnnotation{
			model.StringAnnotation("http.path", "/", web),
		},
	}
	clone := span.Clone()
	require.Equal(t, span, clone)

	clone.Annotations[0].Timestamp = 999
	clone.BinaryAnnotations[0].Value[0] = 'x'
	assert.EqualValues(t, 100, span.Annotations[0].Timestamp)
	assert.EqualValues(t, byte('/'), span.BinaryAnnotations[0].Value[0])
}

func TestEndpointPacksIPv4(t *testing.T) {
	e := model.NewEndpoint("web", "192.168.1.10", 80)
	assert.EqualValues(t, 192<<24|168<<16|1<<8|10, e.IPv4)
	assert.Zero(t, model.NewEndpoint("web", "not-an-ip", 80).IPv4)
}

func TestTraceIDFromString(t *testing.T) {
	id, err := model.TraceIDFromString("00000000000000ff")
	require.NoError(t, err)
	assert.EqualValues(t, 255, id)
	assert.Equal(t, "00000000000000ff", id.String())

	_, err = model.TraceIDFromString("zzz")
	assert.Error(t, err)
}
