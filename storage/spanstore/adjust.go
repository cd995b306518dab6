// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package spanstore

import "fmt"

// Adjust names a post-fetch trace adjustment requested by a caller.
type Adjust int32

const (
	// AdjustNothing leaves timestamps exactly as they were recorded.
	AdjustNothing Adjust = iota
	// AdjustTimeSkew corrects per-host clock differences before the
	// trace is assembled into its derived shapes.
	AdjustTimeSkew
)

var adjustNames = map[Adjust]string{
	AdjustNothing:  "NOTHING",
	AdjustTimeSkew: "TIME_SKEW",
}

func (a Adjust) String() string {
	if s, ok := adjustNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Adjust(%d)", int32(a))
}

// ParseAdjust maps the wire name of an adjustment to its value.
func ParseAdjust(s string) (Adjust, error) {
	for a, name := range adjustNames {
		if name == s {
			return a, nil
		}
	}
	return AdjustNothing, fmt.Errorf("%w: unknown adjust %q", ErrInvalidArgument, s)
}
