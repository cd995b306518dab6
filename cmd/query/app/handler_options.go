// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package app

import "go.uber.org/zap"

// HandlerOption is a function that sets some option on the APIHandler.
type HandlerOption func(handler *APIHandler)

// HandlerOptions is a factory for all available HandlerOptions.
var HandlerOptions handlerOptions

type handlerOptions struct{}

// Logger creates a HandlerOption that initializes Logger on the APIHandler,
// which is used to emit logs.
func (handlerOptions) Logger(logger *zap.Logger) HandlerOption {
	return func(aH *APIHandler) {
		aH.logger = logger
	}
}

// Prefix creates a HandlerOption that initializes the prefix under
// which all API routes are registered. The default is "api".
func (handlerOptions) Prefix(prefix string) HandlerOption {
	return func(aH *APIHandler) {
		aH.apiPrefix = prefix
	}
}
