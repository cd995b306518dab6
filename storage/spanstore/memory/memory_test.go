// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
	"github.com/samirscode/zipkin/storage/ttlstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(ttlstore.NewManager(time.Hour), nil)
}

func testSpan(traceID model.TraceID, spanID model.SpanID, service, name string, ts int64) *model.Span {
	host := model.NewEndpoint(service, "10.0.0.1", 80)
	return &model.Span{
		TraceID: traceID,
		SpanID:  spanID,
		Name:    name,
		Annotations: []model.Annotation{
			{Timestamp: ts, Value: model.ServerRecv, Host: host},
			{Timestamp: ts + 100, Value: model.ServerSend, Host: host},
		},
	}
}

func TestWriteAndGetTrace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	span := testSpan(1, 1, "web", "get", 1000)
	require.NoError(t, store.WriteSpan(ctx, span))

	trace, err := store.GetTrace(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, trace)
	require.Len(t, trace.Spans, 1)
	assert.Equal(t, "get", trace.Spans[0].Name)

	// the store keeps its own copy
	span.Name = "mutated"
	trace, err = store.GetTrace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "get", trace.Spans[0].Name)
}

func TestGetTraceUnknown(t *testing.T) {
	store := newTestStore(t)
	trace, err := store.GetTrace(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, trace)
}

func TestWriteSpanIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))

	trace, err := store.GetTrace(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, trace.Spans, 1)
}

func TestWriteSpanReplacesAndReindexes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "post", 1000)))

	trace, err := store.GetTrace(ctx, 1)
	require.NoError(t, err)
	require.Len(t, trace.Spans, 1)
	assert.Equal(t, "post", trace.Spans[0].Name)

	names, err := store.GetSpanNames(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"post"}, names)
}

func TestGetTracesOmitsUnknownIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(3, 1, "web", "get", 3000)))

	traces, err := store.GetTraces(ctx, []model.TraceID{3, 2, 1})
	require.NoError(t, err)
	require.Len(t, traces, 2)
	assert.EqualValues(t, 3, traces[0].TraceID())
	assert.EqualValues(t, 1, traces[1].TraceID())
}

func TestFindTraceIDsByService(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(2, 1, "web", "get", 2000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(3, 1, "db", "query", 3000)))

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       10_000,
		Limit:       10,
	})
	require.NoError(t, err)
	// default order is most recent first
	assert.Equal(t, []model.TraceID{2, 1}, ids)
}

func TestFindTraceIDsRequiresService(t *testing.T) {
	store := newTestStore(t)
	_, err := store.FindTraceIDs(context.Background(), &spanstore.IndexQuery{})
	assert.ErrorIs(t, err, spanstore.ErrInvalidArgument)
}

func TestFindTraceIDsEndTsExclusive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(2, 1, "web", "get", 2000)))

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       2000,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{1}, ids)
}

func TestFindTraceIDsPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.WriteSpan(ctx, testSpan(model.TraceID(i), 1, "web", "get", int64(i*1000))))
	}

	page1, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       10_000,
		Limit:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{5, 4}, page1)

	// resume below the oldest id of the previous page
	page2, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       4000,
		Limit:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{3, 2}, page2)
}

func TestFindTraceIDsBySpanName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(2, 1, "web", "post", 2000)))

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		SpanName:    "post",
		EndTs:       10_000,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{2}, ids)
}

func TestFindTraceIDsByAnnotation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	host := model.NewEndpoint("web", "10.0.0.1", 80)

	span := testSpan(1, 1, "web", "get", 1000)
	span.Annotations = append(span.Annotations,
		model.Annotation{Timestamp: 1050, Value: "error", Host: host})
	require.NoError(t, store.WriteSpan(ctx, span))
	require.NoError(t, store.WriteSpan(ctx, testSpan(2, 1, "web", "get", 2000)))

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName:   "web",
		AnnotationKey: "error",
		EndTs:         10_000,
		Limit:         10,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{1}, ids)
}

func TestFindTraceIDsByBinaryAnnotation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	host := model.NewEndpoint("web", "10.0.0.1", 80)

	span := testSpan(1, 1, "web", "get", 1000)
	span.BinaryAnnotations = append(span.BinaryAnnotations,
		model.StringAnnotation("http.status", "500", host))
	require.NoError(t, store.WriteSpan(ctx, span))
	require.NoError(t, store.WriteSpan(ctx, testSpan(2, 1, "web", "get", 2000)))

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName:     "web",
		AnnotationKey:   "http.status",
		AnnotationValue: []byte("500"),
		EndTs:           10_000,
		Limit:           10,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{1}, ids)
}

func TestFindTraceIDsDurationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	host := model.NewEndpoint("web", "10.0.0.1", 80)

	short := testSpan(1, 1, "web", "get", 1000) // duration 100
	long := testSpan(2, 1, "web", "get", 2000)
	long.Annotations = append(long.Annotations,
		model.Annotation{Timestamp: 2500, Value: model.ClientRecv, Host: host}) // duration 500
	require.NoError(t, store.WriteSpan(ctx, short))
	require.NoError(t, store.WriteSpan(ctx, long))

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       10_000,
		Limit:       10,
		Order:       spanstore.OrderDurationDesc,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{2, 1}, ids)

	ids, err = store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       10_000,
		Limit:       10,
		Order:       spanstore.OrderDurationAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, []model.TraceID{1, 2}, ids)
}

func TestGetServicesAndSpanNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(2, 1, "db", "query", 2000)))
	require.NoError(t, store.WriteSpan(ctx, testSpan(3, 1, "web", "post", 3000)))

	services, err := store.GetServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "web"}, services)

	names, err := store.GetSpanNames(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "post"}, names)

	names, err = store.GetSpanNames(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRemoveTrace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	require.NoError(t, store.RemoveTrace(ctx, 1))

	trace, err := store.GetTrace(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, trace)

	services, err := store.GetServices(ctx)
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestExpiredTraceInvisible(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	store.timeNow = func() time.Time { return time.Now().Add(2 * time.Hour) }

	trace, err := store.GetTrace(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, trace)

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       10_000,
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Empty(t, ids)

	services, err := store.GetServices(ctx)
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestPurgeExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteSpan(ctx, testSpan(1, 1, "web", "get", 1000)))
	store.timeNow = func() time.Time { return time.Now().Add(2 * time.Hour) }

	assert.Equal(t, 1, store.PurgeExpired(ctx))
	assert.Equal(t, 0, store.PurgeExpired(ctx))

	sh := store.shard(1)
	sh.RLock()
	_, ok := sh.traces[1]
	sh.RUnlock()
	assert.False(t, ok)
}

func TestConcurrentWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				id := model.TraceID(g*50 + i + 1)
				store.WriteSpan(ctx, testSpan(id, 1, "web", "get", int64(id)*10))
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: "web",
		EndTs:       1 << 40,
		Limit:       1000,
	})
	require.NoError(t, err)
	assert.Len(t, ids, 400)
}

func TestConcurrentReplaceKeepsNewSpanIndexed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A replacement reindexes the whole trace while another writer adds
	// a new span to it. Whatever the interleaving, a span whose write
	// has returned must be visible to index lookups.
	for i := 0; i < 200; i++ {
		traceID := model.TraceID(i + 1)
		require.NoError(t, store.WriteSpan(ctx, testSpan(traceID, 1, "web", "get", 1000)))

		done := make(chan struct{}, 2)
		go func() {
			assert.NoError(t, store.WriteSpan(ctx, testSpan(traceID, 1, "web", "get", 1200)))
			done <- struct{}{}
		}()
		go func() {
			assert.NoError(t, store.WriteSpan(ctx, testSpan(traceID, 2, "web", "post", 1100)))
			done <- struct{}{}
		}()
		<-done
		<-done

		ids, err := store.FindTraceIDs(ctx, &spanstore.IndexQuery{
			ServiceName: "web", SpanName: "post", EndTs: 10_000, Limit: 10,
		})
		require.NoError(t, err)
		require.Equal(t, []model.TraceID{traceID}, ids)
	}
}
