// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
)

const (
	serviceNameParam = "serviceName"
	spanNameParam    = "spanName"
	keyParam         = "key"
	valueParam       = "value"
	endTsParam       = "endTs"
	limitParam       = "limit"
	orderParam       = "order"
	idsParam         = "ids"
	adjustParam      = "adjust"
)

// queryParser translates URL query parameters into query service
// arguments. Defaults mirror the service layer: endTs is "now", the
// limit falls back to the store default, and the order to most
// recent first.
type queryParser struct {
	timeNow func() time.Time
}

func newQueryParser() queryParser {
	return queryParser{timeNow: time.Now}
}

func (p queryParser) parseIndexQuery(r *http.Request) (spanstore.IndexQuery, error) {
	q := spanstore.IndexQuery{
		ServiceName:   r.FormValue(serviceNameParam),
		SpanName:      r.FormValue(spanNameParam),
		AnnotationKey: r.FormValue(keyParam),
	}
	if v := r.FormValue(valueParam); v != "" {
		q.AnnotationValue = []byte(v)
	}

	endTs := model.TimeAsEpochMicroseconds(p.timeNow())
	if v := r.FormValue(endTsParam); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return spanstore.IndexQuery{}, invalidParamError(endTsParam, err)
		}
		endTs = parsed
	}
	q.EndTs = endTs

	limit := spanstore.DefaultQueryLimit
	if v := r.FormValue(limitParam); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return spanstore.IndexQuery{}, invalidParamError(limitParam, err)
		}
		limit = parsed
	}
	q.Limit = limit

	order, err := spanstore.ParseOrder(r.FormValue(orderParam))
	if err != nil {
		return spanstore.IndexQuery{}, invalidParamError(orderParam, err)
	}
	q.Order = order
	return q, nil
}

// parseBatchQuery reads the trace id list and adjuster list shared by
// all batch retrieval endpoints. Trace ids arrive comma separated in
// lowercase hex; adjusters comma separated by name.
func (p queryParser) parseBatchQuery(r *http.Request) ([]model.TraceID, []spanstore.Adjust, error) {
	raw := r.FormValue(idsParam)
	if raw == "" {
		return nil, nil, invalidParamError(idsParam, fmt.Errorf("parameter is required"))
	}
	var ids []model.TraceID
	for _, s := range strings.Split(raw, ",") {
		id, err := model.TraceIDFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, nil, invalidParamError(idsParam, err)
		}
		ids = append(ids, id)
	}

	var adjusts []spanstore.Adjust
	if raw := r.FormValue(adjustParam); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			adjust, err := spanstore.ParseAdjust(strings.TrimSpace(s))
			if err != nil {
				return nil, nil, invalidParamError(adjustParam, err)
			}
			adjusts = append(adjusts, adjust)
		}
	}
	return ids, adjusts, nil
}

func (queryParser) parseTraceIDVar(r *http.Request) (model.TraceID, error) {
	id, err := model.TraceIDFromString(mux.Vars(r)[traceIDParam])
	if err != nil {
		return 0, invalidParamError(traceIDParam, err)
	}
	return id, nil
}

func invalidParamError(param string, err error) error {
	return &spanstore.QueryError{
		Msg: fmt.Sprintf("unable to parse param '%s'", param),
		Err: fmt.Errorf("%w: %w", spanstore.ErrInvalidArgument, err),
	}
}
