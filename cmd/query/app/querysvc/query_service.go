// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

// Package querysvc orchestrates the query surface: index lookups,
// batch trace fetches, skew adjustment, derived-shape assembly and
// retention control. All failures that reach a caller are
// spanstore.QueryError values.
package querysvc

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/model/adjuster"
	"github.com/samirscode/zipkin/storage/spanstore"
	"github.com/samirscode/zipkin/storage/ttlstore"
)

// QueryService answers the twelve operations of the query contract.
type QueryService struct {
	store   spanstore.Store
	ttl     *ttlstore.Manager
	logger  *zap.Logger
	metrics *serviceMetrics
}

// Options has optional members of QueryService.
type Options struct {
	Logger *zap.Logger
}

// NewQueryService returns a new QueryService over the given store and
// TTL manager.
func NewQueryService(store spanstore.Store, ttl *ttlstore.Manager, options Options) *QueryService {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		metrics: newServiceMetrics(),
	}
}

// WriteSpan ingests one completed span.
func (qs *QueryService) WriteSpan(ctx context.Context, span *model.Span) error {
	if span == nil || span.TraceID == 0 || span.SpanID == 0 {
		return &spanstore.QueryError{Msg: "invalid argument", Err: spanstore.ErrInvalidArgument}
	}
	if err := qs.store.WriteSpan(ctx, span); err != nil {
		return storageError(err)
	}
	qs.metrics.spansWritten.Inc()
	return nil
}

// GetTraceIDsByServiceName lists trace ids that involved a service.
func (qs *QueryService) GetTraceIDsByServiceName(ctx context.Context, service string, endTs int64, limit int, order spanstore.Order) ([]model.TraceID, error) {
	return qs.findTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: service,
		EndTs:       endTs,
		Limit:       limit,
		Order:       order,
	})
}

// GetTraceIDsBySpanName lists trace ids for a (service, span name)
// pair; an empty span name degrades to a service-only lookup.
func (qs *QueryService) GetTraceIDsBySpanName(ctx context.Context, service, spanName string, endTs int64, limit int, order spanstore.Order) ([]model.TraceID, error) {
	return qs.findTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName: service,
		SpanName:    spanName,
		EndTs:       endTs,
		Limit:       limit,
		Order:       order,
	})
}

// GetTraceIDsByAnnotation lists trace ids carrying an annotation. A
// nil value matches a timestamp annotation whose value equals key; a
// non-nil one matches a binary annotation with that exact key/value.
func (qs *QueryService) GetTraceIDsByAnnotation(ctx context.Context, service, key string, value []byte, endTs int64, limit int, order spanstore.Order) ([]model.TraceID, error) {
	if key == "" {
		return nil, &spanstore.QueryError{Msg: "invalid argument", Err: spanstore.ErrInvalidArgument}
	}
	return qs.findTraceIDs(ctx, &spanstore.IndexQuery{
		ServiceName:     service,
		AnnotationKey:   key,
		AnnotationValue: value,
		EndTs:           endTs,
		Limit:           limit,
		Order:           order,
	})
}

func (qs *QueryService) findTraceIDs(ctx context.Context, query *spanstore.IndexQuery) ([]model.TraceID, error) {
	if query.ServiceName == "" {
		return nil, &spanstore.QueryError{Msg: "invalid argument", Err: spanstore.ErrInvalidArgument}
	}
	if query.Order < spanstore.OrderTimestampDesc || query.Order > spanstore.OrderNone {
		return nil, &spanstore.QueryError{Msg: "invalid argument", Err: spanstore.ErrInvalidArgument}
	}
	timer := qs.metrics.lookupTimer()
	ids, err := qs.store.FindTraceIDs(ctx, query)
	timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, spanstore.ErrInvalidArgument) {
			return nil, &spanstore.QueryError{Msg: "invalid argument", Err: err}
		}
		return nil, storageError(err)
	}
	return ids, nil
}

// GetTracesByIDs fetches many traces, adjusted per the request.
// Unknown and expired ids are omitted, not errors.
func (qs *QueryService) GetTracesByIDs(ctx context.Context, traceIDs []model.TraceID, adjusts []spanstore.Adjust) ([]*model.Trace, error) {
	return qs.fetchTraces(ctx, traceIDs, adjusts)
}

// GetTraceSummariesByIDs fetches and summarizes many traces.
func (qs *QueryService) GetTraceSummariesByIDs(ctx context.Context, traceIDs []model.TraceID, adjusts []spanstore.Adjust) ([]model.TraceSummary, error) {
	traces, err := qs.fetchTraces(ctx, traceIDs, adjusts)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.TraceSummary, 0, len(traces))
	for _, trace := range traces {
		if summary, ok := model.Summarize(trace); ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

// GetTraceTimelinesByIDs fetches and flattens many traces.
func (qs *QueryService) GetTraceTimelinesByIDs(ctx context.Context, traceIDs []model.TraceID, adjusts []spanstore.Adjust) ([]model.TraceTimeline, error) {
	traces, err := qs.fetchTraces(ctx, traceIDs, adjusts)
	if err != nil {
		return nil, err
	}
	timelines := make([]model.TraceTimeline, 0, len(traces))
	for _, trace := range traces {
		if timeline, ok := model.TimelineOf(trace); ok {
			timelines = append(timelines, timeline)
		}
	}
	return timelines, nil
}

// GetTraceCombosByIDs fetches many traces bundled with their derived
// shapes.
func (qs *QueryService) GetTraceCombosByIDs(ctx context.Context, traceIDs []model.TraceID, adjusts []spanstore.Adjust) ([]model.TraceCombo, error) {
	traces, err := qs.fetchTraces(ctx, traceIDs, adjusts)
	if err != nil {
		return nil, err
	}
	combos := make([]model.TraceCombo, 0, len(traces))
	for _, trace := range traces {
		combos = append(combos, model.ComboOf(trace))
	}
	return combos, nil
}

// GetServiceNames lists services with non-expired data.
func (qs *QueryService) GetServiceNames(ctx context.Context) ([]string, error) {
	services, err := qs.store.GetServices(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return services, nil
}

// GetSpanNames lists span names recorded for a service.
func (qs *QueryService) GetSpanNames(ctx context.Context, service string) ([]string, error) {
	names, err := qs.store.GetSpanNames(ctx, service)
	if err != nil {
		return nil, storageError(err)
	}
	return names, nil
}

// SetTraceTTL overrides one trace's retention.
func (qs *QueryService) SetTraceTTL(traceID model.TraceID, seconds int64) error {
	if err := qs.ttl.SetTTL(traceID, seconds); err != nil {
		return &spanstore.QueryError{Msg: "invalid ttl", Err: err}
	}
	return nil
}

// GetTraceTTL returns one trace's retention in seconds.
func (qs *QueryService) GetTraceTTL(traceID model.TraceID) int64 {
	return qs.ttl.TTL(traceID)
}

// GetDefaultTTL returns the process-wide default retention in seconds.
func (qs *QueryService) GetDefaultTTL() int64 {
	return qs.ttl.DefaultTTL()
}

// fetchTraces fans out one fetch per id, applies the requested
// adjustments and compacts the results back into input order. A trace
// the store cannot decode or adjust never fails its batch siblings;
// only a storage failure aborts the call.
func (qs *QueryService) fetchTraces(ctx context.Context, traceIDs []model.TraceID, adjusts []spanstore.Adjust) ([]*model.Trace, error) {
	adj, err := adjusterFor(adjusts)
	if err != nil {
		return nil, err
	}

	results := make([]*model.Trace, len(traceIDs))
	errs := make([]error, len(traceIDs))
	var wg sync.WaitGroup
	for i, id := range traceIDs {
		wg.Add(1)
		go func(i int, id model.TraceID) {
			defer wg.Done()
			trace, err := qs.store.GetTrace(ctx, id)
			if err != nil {
				errs[i] = err
				return
			}
			if trace == nil {
				return
			}
			adj.Adjust(trace)
			results[i] = trace
		}(i, id)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, storageError(err)
	}
	traces := make([]*model.Trace, 0, len(results))
	for _, trace := range results {
		if trace != nil {
			traces = append(traces, trace)
		}
	}
	qs.metrics.tracesFetched.Add(float64(len(traces)))
	return traces, nil
}

// adjusterFor maps the request's adjust list to an adjuster. An empty
// list and NOTHING both leave timestamps untouched; the presence of
// TIME_SKEW activates clock-skew correction.
func adjusterFor(adjusts []spanstore.Adjust) (adjuster.Adjuster, error) {
	var chain []adjuster.Adjuster
	for _, a := range adjusts {
		switch a {
		case spanstore.AdjustNothing:
		case spanstore.AdjustTimeSkew:
			chain = append(chain, adjuster.TimeSkew())
		default:
			return nil, &spanstore.QueryError{Msg: "invalid argument", Err: spanstore.ErrInvalidArgument}
		}
	}
	return adjuster.Sequence(chain...), nil
}

func storageError(err error) error {
	return spanstore.WrapQueryError("storage unavailable", err)
}
