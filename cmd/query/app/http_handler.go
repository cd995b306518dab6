// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

// Package app exposes the query service over JSON HTTP. The wire
// encoding is a transport concern; every handler delegates straight to
// the query service.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/samirscode/zipkin/cmd/query/app/querysvc"
	"github.com/samirscode/zipkin/model"
	"github.com/samirscode/zipkin/storage/spanstore"
)

const (
	traceIDParam = "traceID"
	serviceParam = "service"
)

type structuredResponse struct {
	Data   any               `json:"data"`
	Total  int               `json:"total"`
	Errors []structuredError `json:"errors,omitempty"`
}

type structuredError struct {
	Code int    `json:"code,omitempty"`
	Msg  string `json:"msg"`
}

// NewRouter creates and configures a Gorilla router.
func NewRouter() *mux.Router {
	return mux.NewRouter().UseEncodedPath()
}

// APIHandler implements the query service public API by registering
// routes at apiPrefix.
type APIHandler struct {
	queryService *querysvc.QueryService
	queryParser  queryParser
	apiPrefix    string
	logger       *zap.Logger
}

// NewAPIHandler returns an APIHandler.
func NewAPIHandler(queryService *querysvc.QueryService, options ...HandlerOption) *APIHandler {
	aH := &APIHandler{
		queryService: queryService,
		queryParser:  newQueryParser(),
	}
	for _, option := range options {
		option(aH)
	}
	if aH.apiPrefix == "" {
		aH.apiPrefix = "api"
	}
	if aH.logger == nil {
		aH.logger = zap.NewNop()
	}
	return aH
}

// RegisterRoutes registers routes for this handler on the given router.
func (aH *APIHandler) RegisterRoutes(router *mux.Router) {
	aH.handleFunc(router, aH.getTraceIDsByService, "/traces/ids/by-service").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getTraceIDsBySpanName, "/traces/ids/by-span-name").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getTraceIDsByAnnotation, "/traces/ids/by-annotation").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getTraces, "/traces").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getTraceSummaries, "/traces/summaries").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getTraceTimelines, "/traces/timelines").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getTraceCombos, "/traces/combos").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getServices, "/services").Methods(http.MethodGet)
	aH.handleFunc(router, aH.getSpanNames, "/services/{%s}/spans", serviceParam).Methods(http.MethodGet)
	aH.handleFunc(router, aH.setTraceTTL, "/traces/{%s}/ttl", traceIDParam).Methods(http.MethodPut)
	aH.handleFunc(router, aH.getTraceTTL, "/traces/{%s}/ttl", traceIDParam).Methods(http.MethodGet)
	aH.handleFunc(router, aH.getDefaultTTL, "/ttl").Methods(http.MethodGet)
	aH.handleFunc(router, aH.writeSpan, "/spans").Methods(http.MethodPost)
}

func (aH *APIHandler) handleFunc(
	router *mux.Router,
	f func(http.ResponseWriter, *http.Request),
	route string,
	args ...any,
) *mux.Route {
	return router.HandleFunc(aH.route(route, args...), f)
}

func (aH *APIHandler) route(route string, args ...any) string {
	args = append([]any{aH.apiPrefix}, args...)
	return fmt.Sprintf("/%s"+route, args...)
}

func (aH *APIHandler) getTraceIDsByService(w http.ResponseWriter, r *http.Request) {
	q, err := aH.queryParser.parseIndexQuery(r)
	if aH.handleError(w, err) {
		return
	}
	ids, err := aH.queryService.GetTraceIDsByServiceName(r.Context(), q.ServiceName, q.EndTs, q.Limit, q.Order)
	if aH.handleError(w, err) {
		return
	}
	aH.writeTraceIDs(w, ids)
}

func (aH *APIHandler) getTraceIDsBySpanName(w http.ResponseWriter, r *http.Request) {
	q, err := aH.queryParser.parseIndexQuery(r)
	if aH.handleError(w, err) {
		return
	}
	ids, err := aH.queryService.GetTraceIDsBySpanName(r.Context(), q.ServiceName, q.SpanName, q.EndTs, q.Limit, q.Order)
	if aH.handleError(w, err) {
		return
	}
	aH.writeTraceIDs(w, ids)
}

func (aH *APIHandler) getTraceIDsByAnnotation(w http.ResponseWriter, r *http.Request) {
	q, err := aH.queryParser.parseIndexQuery(r)
	if aH.handleError(w, err) {
		return
	}
	ids, err := aH.queryService.GetTraceIDsByAnnotation(r.Context(), q.ServiceName, q.AnnotationKey, q.AnnotationValue, q.EndTs, q.Limit, q.Order)
	if aH.handleError(w, err) {
		return
	}
	aH.writeTraceIDs(w, ids)
}

func (aH *APIHandler) writeTraceIDs(w http.ResponseWriter, ids []model.TraceID) {
	data := make([]string, len(ids))
	for i, id := range ids {
		data[i] = id.String()
	}
	aH.writeJSON(w, &structuredResponse{Data: data, Total: len(data)})
}

func (aH *APIHandler) getTraces(w http.ResponseWriter, r *http.Request) {
	ids, adjusts, err := aH.queryParser.parseBatchQuery(r)
	if aH.handleError(w, err) {
		return
	}
	traces, err := aH.queryService.GetTracesByIDs(r.Context(), ids, adjusts)
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: traces, Total: len(traces)})
}

func (aH *APIHandler) getTraceSummaries(w http.ResponseWriter, r *http.Request) {
	ids, adjusts, err := aH.queryParser.parseBatchQuery(r)
	if aH.handleError(w, err) {
		return
	}
	summaries, err := aH.queryService.GetTraceSummariesByIDs(r.Context(), ids, adjusts)
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: summaries, Total: len(summaries)})
}

func (aH *APIHandler) getTraceTimelines(w http.ResponseWriter, r *http.Request) {
	ids, adjusts, err := aH.queryParser.parseBatchQuery(r)
	if aH.handleError(w, err) {
		return
	}
	timelines, err := aH.queryService.GetTraceTimelinesByIDs(r.Context(), ids, adjusts)
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: timelines, Total: len(timelines)})
}

func (aH *APIHandler) getTraceCombos(w http.ResponseWriter, r *http.Request) {
	ids, adjusts, err := aH.queryParser.parseBatchQuery(r)
	if aH.handleError(w, err) {
		return
	}
	combos, err := aH.queryService.GetTraceCombosByIDs(r.Context(), ids, adjusts)
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: combos, Total: len(combos)})
}

func (aH *APIHandler) getServices(w http.ResponseWriter, r *http.Request) {
	services, err := aH.queryService.GetServiceNames(r.Context())
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: services, Total: len(services)})
}

func (aH *APIHandler) getSpanNames(w http.ResponseWriter, r *http.Request) {
	service, _ := url.QueryUnescape(mux.Vars(r)[serviceParam])
	names, err := aH.queryService.GetSpanNames(r.Context(), service)
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: names, Total: len(names)})
}

type ttlBody struct {
	TTL int64 `json:"ttl"`
}

func (aH *APIHandler) setTraceTTL(w http.ResponseWriter, r *http.Request) {
	traceID, err := aH.queryParser.parseTraceIDVar(r)
	if aH.handleError(w, err) {
		return
	}
	var body ttlBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		aH.handleError(w, malformedBodyError(err))
		return
	}
	if err := aH.queryService.SetTraceTTL(traceID, body.TTL); aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: ttlBody{TTL: body.TTL}, Total: 1})
}

func (aH *APIHandler) getTraceTTL(w http.ResponseWriter, r *http.Request) {
	traceID, err := aH.queryParser.parseTraceIDVar(r)
	if aH.handleError(w, err) {
		return
	}
	aH.writeJSON(w, &structuredResponse{Data: ttlBody{TTL: aH.queryService.GetTraceTTL(traceID)}, Total: 1})
}

func (aH *APIHandler) getDefaultTTL(w http.ResponseWriter, _ *http.Request) {
	aH.writeJSON(w, &structuredResponse{Data: ttlBody{TTL: aH.queryService.GetDefaultTTL()}, Total: 1})
}

func (aH *APIHandler) writeSpan(w http.ResponseWriter, r *http.Request) {
	var span model.Span
	if err := json.NewDecoder(r.Body).Decode(&span); err != nil {
		aH.handleError(w, malformedBodyError(err))
		return
	}
	if err := aH.queryService.WriteSpan(r.Context(), &span); aH.handleError(w, err) {
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func malformedBodyError(err error) error {
	return &spanstore.QueryError{
		Msg: "unable to parse request body",
		Err: fmt.Errorf("%w: %w", spanstore.ErrInvalidArgument, err),
	}
}

// handleError writes the uniform query error envelope and reports
// whether err stopped the request. Invalid arguments and ttl values
// are the caller's fault; everything else is a storage failure.
func (aH *APIHandler) handleError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	status := http.StatusInternalServerError
	if errors.Is(err, spanstore.ErrInvalidArgument) || errors.Is(err, spanstore.ErrInvalidTTL) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		aH.logger.Error("HTTP handler error", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&structuredResponse{
		Errors: []structuredError{{Code: status, Msg: err.Error()}},
	})
	return true
}

func (aH *APIHandler) writeJSON(w http.ResponseWriter, response *structuredResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		aH.logger.Error("failed to encode response", zap.Error(err))
	}
}
