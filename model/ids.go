// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strconv"
)

// TraceID is a 64bit identifier shared by all spans of one trace.
type TraceID uint64

// SpanID is a 64bit identifier for a span within a trace.
type SpanID uint64

// String renders the trace id as a fixed-width hexadecimal string.
func (t TraceID) String() string {
	return fmt.Sprintf("%016x", uint64(t))
}

// TraceIDFromString creates a TraceID from a hexadecimal string.
func TraceIDFromString(s string) (TraceID, error) {
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse trace id %q: %w", s, err)
	}
	return TraceID(id), nil
}

// String renders the span id as a fixed-width hexadecimal string.
func (s SpanID) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// SpanIDFromString creates a SpanID from a hexadecimal string.
func SpanIDFromString(s string) (SpanID, error) {
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse span id %q: %w", s, err)
	}
	return SpanID(id), nil
}
